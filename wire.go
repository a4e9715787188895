package main

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hay-kot/shopcart/internal/api"
	"github.com/hay-kot/shopcart/internal/commands"
	"github.com/hay-kot/shopcart/internal/gateway"
	"github.com/hay-kot/shopcart/internal/shop"
	"github.com/hay-kot/shopcart/internal/store/jsonfile"
)

// wireService builds the client-side stack shared by every command: the
// state file, the cart and identity stores on top of it, and the sync
// gateway that reads the bearer token from the identity store.
func wireService(flags *commands.Flags) error {
	cfg := flags.Config

	state := jsonfile.NewKVStore(cfg.StateFile(), log.Logger)
	carts := jsonfile.NewCartStore(state, log.Logger)
	identity := jsonfile.NewIdentityStore(state, log.Logger)

	gw, err := gateway.New(gateway.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, identity, log.Logger)
	if err != nil {
		return fmt.Errorf("create api client: %w", err)
	}

	svc := shop.New(carts, identity, api.New(gw), log.Logger)
	svc.Subscribe(func(e shop.Event) {
		ev := log.Debug().Str("component", "events").Stringer("kind", e.Kind)
		if e.Kind == shop.EventCartChanged {
			ev = ev.Int("badge", e.Cart.ItemCount()).Str("subtotal", e.Cart.Subtotal().String())
		} else {
			ev = ev.Bool("signed_in", e.Identity.SignedIn())
		}
		ev.Msg("state changed")
	})

	flags.Carts = carts
	flags.Service = svc
	return nil
}
