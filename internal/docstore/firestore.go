package docstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hay-kot/shopcart/internal/core/account"
	"github.com/hay-kot/shopcart/internal/core/catalog"
	"github.com/hay-kot/shopcart/internal/core/cart"
)

const (
	productsCollection = "products"
	usersCollection    = "users"
)

// Firestore stores products and users in Cloud Firestore. Users are keyed by
// normalized email so that Create can rely on the document id for uniqueness.
// Set FIRESTORE_EMULATOR_HOST to run against the emulator.
type Firestore struct {
	client *firestore.Client
	logger zerolog.Logger
	now    func() time.Time
}

var (
	_ catalog.Store = (*Firestore)(nil)
	_ account.Store = (*Firestore)(nil)
)

// productDoc is the stored shape of a product. Price is kept in cents.
type productDoc struct {
	Name         string    `firestore:"name"`
	Image        string    `firestore:"image"`
	PriceCents   int64     `firestore:"priceCents"`
	Rating       float64   `firestore:"rating"`
	NumReviews   int       `firestore:"numReviews"`
	Brand        string    `firestore:"brand,omitempty"`
	Category     string    `firestore:"category,omitempty"`
	CountInStock int       `firestore:"countInStock"`
	Description  string    `firestore:"description,omitempty"`
	Seq          int       `firestore:"seq"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

type userDoc struct {
	ID           string    `firestore:"id"`
	Name         string    `firestore:"name"`
	Email        string    `firestore:"email"`
	PasswordHash string    `firestore:"passwordHash"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

// OpenFirestore connects to the project's default database.
func OpenFirestore(ctx context.Context, projectID string, logger zerolog.Logger) (*Firestore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}

	logger.Info().Str("project_id", projectID).Msg("firestore ready")
	return &Firestore{client: client, logger: logger, now: time.Now}, nil
}

// Close releases the client.
func (f *Firestore) Close() error {
	return f.client.Close()
}

func (f *Firestore) products() *firestore.CollectionRef {
	return f.client.Collection(productsCollection)
}

func (f *Firestore) users() *firestore.CollectionRef {
	return f.client.Collection(usersCollection)
}

// List reads the whole collection and filters in memory; Firestore has no
// case-insensitive substring query.
func (f *Firestore) List(ctx context.Context, query string) ([]catalog.Product, error) {
	it := f.products().OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer it.Stop()

	type ordered struct {
		p   catalog.Product
		seq int
	}

	var all []ordered
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}

		var d productDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, fmt.Errorf("decode product %s: %w", snap.Ref.ID, err)
		}

		p := d.toProduct(snap.Ref.ID)
		if catalog.MatchesQuery(p, query) {
			all = append(all, ordered{p: p, seq: d.Seq})
		}
	}

	// Same-batch products share createdAt; seq restores insertion order.
	slices.SortStableFunc(all, func(a, b ordered) int {
		if c := b.p.CreatedAt.Compare(a.p.CreatedAt); c != 0 {
			return c
		}
		return a.seq - b.seq
	})

	out := make([]catalog.Product, len(all))
	for i, o := range all {
		out[i] = o.p
	}
	return out, nil
}

func (f *Firestore) Get(ctx context.Context, id string) (catalog.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, "/") {
		return catalog.Product{}, catalog.ErrNotFound
	}

	snap, err := f.products().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return catalog.Product{}, catalog.ErrNotFound
		}
		return catalog.Product{}, fmt.Errorf("get product: %w", err)
	}

	var d productDoc
	if err := snap.DataTo(&d); err != nil {
		return catalog.Product{}, fmt.Errorf("decode product %s: %w", id, err)
	}
	return d.toProduct(snap.Ref.ID), nil
}

func (f *Firestore) Count(ctx context.Context) (int, error) {
	snaps, err := f.products().Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return len(snaps), nil
}

func (f *Firestore) InsertMany(ctx context.Context, products []catalog.Product) ([]catalog.Product, error) {
	now := f.now().UTC()
	out := make([]catalog.Product, len(products))

	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for i, p := range products {
			p = catalog.Prepare(p, newID(), now)
			if err := tx.Create(f.products().Doc(p.ID), fromProduct(p, i)); err != nil {
				return err
			}
			out[i] = p
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert products: %w", err)
	}
	return out, nil
}

func (f *Firestore) Create(ctx context.Context, u account.User) error {
	u.Email = account.NormalizeEmail(u.Email)

	_, err := f.users().Doc(u.Email).Create(ctx, userDoc{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return account.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (f *Firestore) FindByEmail(ctx context.Context, email string) (account.User, error) {
	email = account.NormalizeEmail(email)
	if email == "" || strings.Contains(email, "/") {
		return account.User{}, account.ErrNotFound
	}

	snap, err := f.users().Doc(email).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return account.User{}, account.ErrNotFound
		}
		return account.User{}, fmt.Errorf("find user: %w", err)
	}

	var d userDoc
	if err := snap.DataTo(&d); err != nil {
		return account.User{}, fmt.Errorf("decode user: %w", err)
	}

	return account.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func fromProduct(p catalog.Product, seq int) productDoc {
	return productDoc{
		Name:         p.Name,
		Image:        p.Image,
		PriceCents:   int64(p.Price),
		Rating:       p.Rating,
		NumReviews:   p.NumReviews,
		Brand:        p.Brand,
		Category:     p.Category,
		CountInStock: p.CountInStock,
		Description:  p.Description,
		Seq:          seq,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (d productDoc) toProduct(id string) catalog.Product {
	return catalog.Product{
		ID:           id,
		Name:         d.Name,
		Image:        d.Image,
		Price:        cart.Money(d.PriceCents),
		Rating:       d.Rating,
		NumReviews:   d.NumReviews,
		Brand:        d.Brand,
		Category:     d.Category,
		CountInStock: d.CountInStock,
		Description:  d.Description,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
