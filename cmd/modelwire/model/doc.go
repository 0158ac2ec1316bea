// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package model implements the "modelwire model" command group: show,
// validate, and export model collection descriptors.
package model
