// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import "errors"

var (
	// ErrNoInteractions is returned when there is nothing to index or train on.
	ErrNoInteractions = errors.New("no interactions to train on")

	// ErrUnknownUser means the model has no factor vector for the user.
	ErrUnknownUser = errors.New("user not present in trained model")

	// ErrInvalidMapping is returned when index tables are not a bijection.
	ErrInvalidMapping = errors.New("index mapping is not a bijection")

	// ErrNoModel is returned by Score when no model has been published.
	ErrNoModel = errors.New("no trained model")

	// ErrTrainingInProgress is returned by TryTrainModel when a pass is
	// already running.
	ErrTrainingInProgress = errors.New("training already in progress")
)
