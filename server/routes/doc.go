// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package routes holds the three mounted route groups (storefront,
administrative, authentication) plus the error endpoints.

Handlers return errors instead of writing failure responses themselves;
the error presenter middleware converts anything unhandled into the
generic failure view.
*/
package routes
