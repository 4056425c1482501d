// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package middleware implements the request pipeline: upload interception,
session resolution, CSRF protection, identity resolution and centralized
error rendering.

Stages run in the fixed order registered in router.RegisterMiddleware;
a stage either continues the chain, short-circuits with its own response,
or hands the request to the error presenter.
*/
package middleware
