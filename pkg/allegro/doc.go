// Package allegro is a client for the Allegro marketplace REST API.
//
// All calls go through a retryx.Invoker, which handles retries, exponential
// backoff and the provider's rate-limit headers. OAuth tokens live in an
// injected TokenStore rather than in the client itself, so several processes
// can share one credential set; the background Refresher keeps the access
// token fresh ahead of expiry.
//
// Typical wiring:
//
//	client := allegro.NewClient(tokens)
//	refresher := allegro.NewRefresher(client, logger)
//	refresher.Start()
//	defer refresher.Stop()
//
//	offers, err := client.FetchOffers(ctx, allegro.OfferQuery{Limit: 100})
package allegro
