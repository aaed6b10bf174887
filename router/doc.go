// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the content voting API.

# Route Registration

NewRouter builds the handlers from Deps and registers them on an
http.ServeMux:

	mux := router.NewRouter(router.Deps{
		Engine:    engine,
		Results:   aggregator,
		Polls:     catalog,
		Lifecycle: lifecycle,
		Users:     sqlStore,
		Metrics:   m,
		Config:    cfg,
	})

# Endpoints

Operational:

	GET /health  - Liveness
	GET /metrics - Prometheus metrics

Voting (requires X-User-Token):

	POST /polls/{id}/votes - Cast or change a vote

Polls and results (public):

	GET /polls?content_type=&content_key= - Active polls for a content item
	GET /polls/{id}                       - Poll and options
	GET /polls/{id}/results               - Live results

Lifecycle (admin, requires X-User-Token):

	POST /polls/{id}/activate
	POST /polls/{id}/close

Every API route is wrapped in middleware.WithLogging.
*/
package router
