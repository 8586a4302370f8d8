// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package api serves the Platewise HTTP API on a Chi router.

Endpoints (all under /api/v1):

	GET  /health                        liveness plus database and model state
	GET  /recommendations/status        training coordinator status
	GET  /recommendations/{userID}?n=5  ML or catalog-fallback recommendations
	POST /interactions/orders           {user_id, items:[{item_id, quantity}]}
	POST /interactions/views            {user_id, item_id}
	POST /interactions/ratings          {user_id, item_id, rating}
	GET  /items                         catalog, ?available=true for in-stock only
	GET  /items/{itemID}                one catalog item
	POST /admin/train                   blocking training pass

GET /metrics serves the Prometheus registry outside /api/v1.

Every JSON response uses the models.APIResponse envelope. Validation failures
return 400 with code VALIDATION_ERROR and per-field details.

Recommendations come from the ML model only when the user has at least
MinOrdersForML orders and the model knows them; otherwise the handler serves
in-stock catalog items in catalog order and marks the response
source "fallback".

Both paths take the same optional filters as query parameters:

	diet=vegetarian|vegan
	allergens=gluten,dairy      (or repeated)
	budget_min=5&budget_max=12
	cuisine=italian             (fallback only; ignored when nothing matches)

Items failing diet, allergens or budget are never returned.
*/
package api
