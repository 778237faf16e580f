package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainproperties "iasrentals/internal/domain/properties"
	domainreviews "iasrentals/internal/domain/reviews"
	"iasrentals/internal/domain/shared/fault"
	domainuser "iasrentals/internal/domain/user"
	domainvisits "iasrentals/internal/domain/visits"
	"iasrentals/internal/infra/storage/memory"
)

type fixture struct {
	store  *memory.Store
	outbox *memory.Outbox
	clock  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.NewStore(),
		outbox: memory.NewOutbox(nil, nil),
		clock:  time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	ctx := context.Background()
	for _, u := range []domainuser.CreateParams{
		{ID: "owner-1", Email: "owner@example.com", Name: "Olga Owner", PasswordHash: "x", Role: domainuser.RoleOwner},
		{ID: "owner-2", Email: "owner2@example.com", Name: "Otto Owner", PasswordHash: "x", Role: domainuser.RoleOwner},
		{ID: "buyer-1", Email: "buyer@example.com", Name: "Bob Buyer", PasswordHash: "x", Role: domainuser.RoleBuyer},
		{ID: "buyer-2", Email: "buyer2@example.com", Name: "Bea Buyer", PasswordHash: "x", Role: domainuser.RoleBuyer},
	} {
		user, err := domainuser.NewUser(u)
		require.NoError(t, err)
		require.NoError(t, f.store.Users.Save(ctx, user))
	}
	for _, p := range []domainproperties.CreateParams{
		{ID: "prop-1", OwnerID: "owner-1", Title: "Sunny flat", Address: "Str. Lapusneanu 10", City: "Iasi"},
		{ID: "prop-2", OwnerID: "owner-2", Title: "Quiet house", Address: "Str. Sararie 3", City: "Iasi"},
	} {
		p.Price = domainproperties.Price{Amount: 400}
		p.Transaction = domainproperties.TransactionRent
		p.Rooms = 2
		prop, err := domainproperties.NewProperty(p)
		require.NoError(t, err)
		require.NoError(t, f.store.Properties.Save(ctx, prop))
	}
	return f
}

func (f *fixture) visit(t *testing.T, id, buyer, property, slot string) *domainvisits.Visit {
	t.Helper()
	v, err := domainvisits.Schedule(domainvisits.ScheduleParams{
		ID: domainvisits.ID(id), PropertyID: domainproperties.ID(property), BuyerID: domainuser.ID(buyer),
		Date: "2024-06-01", Time: slot, Now: f.clock,
	})
	require.NoError(t, err)
	require.NoError(t, f.store.Visits.Insert(context.Background(), v))
	return v
}

func (f *fixture) create() *CreateReviewHandler {
	f.clock = f.clock.Add(time.Minute)
	now := f.clock
	return &CreateReviewHandler{UoWFactory: f.store.Factory(), Outbox: f.outbox, Now: func() time.Time { return now }}
}

func validCommand() CreateReviewCommand {
	return CreateReviewCommand{
		ActorID: "buyer-1", ActorRole: domainuser.RoleBuyer,
		OwnerID: "owner-1", PropertyID: "prop-1", Rating: 5, Comment: "Great host",
	}
}

func TestCreateReviewWithQualifyingVisit(t *testing.T) {
	f := newFixture(t)
	f.visit(t, "v-1", "buyer-1", "prop-1", "10:00")

	res, err := f.create().Handle(context.Background(), validCommand())
	require.NoError(t, err)
	assert.Equal(t, "v-1", res.VisitID)
	assert.Equal(t, "Bob Buyer", res.BuyerName)
	assert.Equal(t, "Sunny flat", res.PropertyTitle)
	assert.Equal(t, 5, res.Rating)

	pending := f.outbox.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, domainreviews.EventReviewCreated, pending[0].Name)
}

func TestCreateReviewCheckOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.visit(t, "v-1", "buyer-1", "prop-1", "10:00")
	f.visit(t, "v-2", "buyer-2", "prop-1", "10:30")

	cases := []struct {
		name   string
		mutate func(*CreateReviewCommand)
		want   error
	}{
		{"owner role", func(c *CreateReviewCommand) { c.ActorID = "owner-2"; c.ActorRole = domainuser.RoleOwner }, domainreviews.ErrBuyersOnly},
		{"unknown owner", func(c *CreateReviewCommand) { c.OwnerID = "ghost" }, domainreviews.ErrOwnerNotFound},
		{"buyer as owner", func(c *CreateReviewCommand) { c.OwnerID = "buyer-2" }, domainreviews.ErrOwnerNotFound},
		{"foreign property", func(c *CreateReviewCommand) { c.PropertyID = "prop-2" }, domainreviews.ErrPropertyNotFound},
		{"missing property", func(c *CreateReviewCommand) { c.PropertyID = "nope" }, domainreviews.ErrPropertyNotFound},
		{"visit of another buyer", func(c *CreateReviewCommand) { c.VisitID = "v-2" }, domainreviews.ErrVisitNotOwned},
		{"unknown visit", func(c *CreateReviewCommand) { c.VisitID = "v-9" }, domainreviews.ErrVisitNotOwned},
		{"rating above range", func(c *CreateReviewCommand) { c.Rating = 6 }, domainreviews.ErrInvalidRating},
		{"rating below range", func(c *CreateReviewCommand) { c.Rating = 0 }, domainreviews.ErrInvalidRating},
		{"bad rating loses to bad owner", func(c *CreateReviewCommand) { c.Rating = 9; c.OwnerID = "ghost" }, domainreviews.ErrOwnerNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := validCommand()
			tc.mutate(&cmd)
			_, err := f.create().Handle(ctx, cmd)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateReviewRequiresVisit(t *testing.T) {
	f := newFixture(t)
	_, err := f.create().Handle(context.Background(), validCommand())
	require.ErrorIs(t, err, domainreviews.ErrVisitRequired)
	assert.True(t, fault.Is(err, fault.BadRequest))
}

func TestCancelledVisitDoesNotQualify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.visit(t, "v-1", "buyer-1", "prop-1", "10:00")
	require.NoError(t, v.Cancel("buyer-1", "owner-1", f.clock))
	require.NoError(t, f.store.Visits.UpdateStatus(ctx, v))

	_, err := f.create().Handle(ctx, validCommand())
	assert.ErrorIs(t, err, domainreviews.ErrVisitRequired)
}

func TestCompletedVisitQualifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.visit(t, "v-1", "buyer-1", "prop-1", "10:00")
	require.NoError(t, v.Complete("owner-1", f.clock))
	require.NoError(t, f.store.Visits.UpdateStatus(ctx, v))

	_, err := f.create().Handle(ctx, validCommand())
	assert.NoError(t, err)
}

func TestDuplicateReviewRejectedBeforeRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.visit(t, "v-1", "buyer-1", "prop-1", "10:00")
	_, err := f.create().Handle(ctx, validCommand())
	require.NoError(t, err)

	again := validCommand()
	again.Rating = 0
	_, err = f.create().Handle(ctx, again)
	assert.ErrorIs(t, err, domainreviews.ErrDuplicateReview)
}

func TestOwnerReviewsAverageAndOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.visit(t, "v-1", "buyer-1", "prop-1", "10:00")
	f.visit(t, "v-2", "buyer-2", "prop-1", "10:30")

	_, err := f.create().Handle(ctx, validCommand())
	require.NoError(t, err)
	second := validCommand()
	second.ActorID = "buyer-2"
	second.Rating = 4
	_, err = f.create().Handle(ctx, second)
	require.NoError(t, err)

	res, err := (&GetOwnerReviewsHandler{UoWFactory: f.store.Factory()}).Handle(ctx, GetOwnerReviewsQuery{OwnerID: "owner-1"})
	require.NoError(t, err)
	assert.Equal(t, 4.5, res.AverageRating)
	assert.Equal(t, 2, res.TotalReviews)
	require.Len(t, res.Reviews, 2)
	assert.Equal(t, "buyer-2", res.Reviews[0].BuyerID)
	assert.Equal(t, "Bea Buyer", res.Reviews[0].BuyerName)

	props, err := (&GetPropertyReviewsHandler{UoWFactory: f.store.Factory()}).Handle(ctx, GetPropertyReviewsQuery{PropertyID: "prop-1"})
	require.NoError(t, err)
	assert.Len(t, props, 2)
}

func TestOwnerReviewsEmptyAndMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := &GetOwnerReviewsHandler{UoWFactory: f.store.Factory()}

	res, err := h.Handle(ctx, GetOwnerReviewsQuery{OwnerID: "owner-2"})
	require.NoError(t, err)
	assert.Zero(t, res.AverageRating)
	assert.Zero(t, res.TotalReviews)
	assert.NotNil(t, res.Reviews)

	buyer, err := h.Handle(ctx, GetOwnerReviewsQuery{OwnerID: "buyer-1"})
	require.NoError(t, err)
	assert.Equal(t, "buyer-1", buyer.OwnerID)
	assert.Zero(t, buyer.TotalReviews)
	assert.Empty(t, buyer.Reviews)

	_, err = h.Handle(ctx, GetOwnerReviewsQuery{OwnerID: "ghost"})
	assert.True(t, fault.Is(err, fault.NotFound))

	_, err = (&GetPropertyReviewsHandler{UoWFactory: f.store.Factory()}).Handle(ctx, GetPropertyReviewsQuery{PropertyID: "nope"})
	assert.True(t, fault.Is(err, fault.NotFound))
}
