package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/shopcart/internal/api"
	"github.com/hay-kot/shopcart/internal/core/cart"
	"github.com/hay-kot/shopcart/internal/core/session"
)

type fakeCarts struct {
	cart cart.Cart
	err  error
}

func (f fakeCarts) Load(context.Context) (cart.Cart, error) { return f.cart, f.err }

type fakeIdentity struct {
	ident session.Identity
	ok    bool
}

func (f fakeIdentity) Identity(context.Context) (session.Identity, bool) { return f.ident, f.ok }

type fakePinger struct {
	health api.Health
	err    error
}

func (f fakePinger) Ping(context.Context) (api.Health, error) { return f.health, f.err }

func statuses(r Result) []Status {
	out := make([]Status, len(r.Items))
	for i, item := range r.Items {
		out[i] = item.Status
	}
	return out
}

func TestDataDirCheck(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shopcart")

	res := NewDataDirCheck(dir, false).Run(context.Background())
	assert.Equal(t, []Status{StatusWarn}, statuses(res))
	assert.Equal(t, 1, CountFixable([]Result{res}))

	res = NewDataDirCheck(dir, true).Run(context.Background())
	assert.Equal(t, []Status{StatusPass, StatusPass}, statuses(res))
	assert.DirExists(t, dir)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	res = NewDataDirCheck(file, true).Run(context.Background())
	assert.Equal(t, []Status{StatusFail}, statuses(res))
}

func TestStateCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	t.Run("missing file", func(t *testing.T) {
		res := NewStateCheck(path, fakeCarts{}, fakeIdentity{}).Run(context.Background())
		assert.Equal(t, []Status{StatusPass}, statuses(res))
	})

	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	t.Run("healthy", func(t *testing.T) {
		c := cart.Empty().Add(cart.Snapshot{ID: "p1", Name: "Mouse", Price: 4999})
		ident := session.New("tok", session.Profile{Name: "Ada", Email: "ada@example.com"}, time.Now())

		res := NewStateCheck(path, fakeCarts{cart: c}, fakeIdentity{ident: ident, ok: true}).Run(context.Background())
		assert.Equal(t, []Status{StatusPass, StatusPass}, statuses(res))
		assert.Equal(t, "1 items, $49.99", res.Items[0].Detail)
		assert.Equal(t, "ada@example.com", res.Items[1].Detail)
	})

	t.Run("corrupt cart", func(t *testing.T) {
		corrupt := fmt.Errorf("decode: %w", cart.ErrCorrupt)
		res := NewStateCheck(path, fakeCarts{err: corrupt}, fakeIdentity{}).Run(context.Background())
		assert.Equal(t, []Status{StatusFail, StatusPass}, statuses(res))
	})

	t.Run("token without profile", func(t *testing.T) {
		res := NewStateCheck(path, fakeCarts{cart: cart.Empty()}, fakeIdentity{ident: session.Identity{Token: "tok"}, ok: true}).Run(context.Background())
		assert.Equal(t, []Status{StatusPass, StatusWarn}, statuses(res))
	})
}

func TestAPICheck(t *testing.T) {
	res := NewAPICheck("http://api", fakePinger{health: api.Health{OK: true, Service: "shopcart-api"}}, time.Second).Run(context.Background())
	assert.Equal(t, []Status{StatusPass, StatusPass}, statuses(res))

	res = NewAPICheck("http://api", fakePinger{err: errors.New("connection refused")}, time.Second).Run(context.Background())
	require.Len(t, res.Items, 1)
	assert.Equal(t, StatusFail, res.Items[0].Status)
	assert.Contains(t, res.Items[0].Detail, "connection refused")
}

func TestRunAllAndSummary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	checks := []Check{
		NewDataDirCheck(dir, false),
		NewAPICheck("http://api", fakePinger{err: errors.New("down")}, 0),
	}

	results := RunAll(context.Background(), checks)
	require.Len(t, results, 2)
	assert.Equal(t, "Data Directory", results[0].Name)
	assert.Equal(t, StatusWarn, results[0].Status())
	assert.Equal(t, StatusFail, results[1].Status())

	out, err := json.Marshal(results[0].Items[0])
	require.NoError(t, err)
	assert.Contains(t, string(out), `"status":"warn"`)

	passed, warned, failed := Summary(results)
	assert.Equal(t, 0, passed)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 1, failed)
}
