package visits

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "iasrentals/internal/app/outbox"
	domainproperties "iasrentals/internal/domain/properties"
	"iasrentals/internal/domain/shared/fault"
	domainuser "iasrentals/internal/domain/user"
	domainvisits "iasrentals/internal/domain/visits"
	"iasrentals/internal/infra/storage/memory"
)

type fixture struct {
	store  *memory.Store
	outbox *memory.Outbox
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.NewStore(),
		outbox: memory.NewOutbox(nil, nil),
		now:    time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC),
	}
	ctx := context.Background()
	for _, u := range []domainuser.CreateParams{
		{ID: "owner-1", Email: "owner@example.com", Name: "Olga Owner", PasswordHash: "x", Role: domainuser.RoleOwner},
		{ID: "owner-2", Email: "other@example.com", Name: "Other Owner", PasswordHash: "x", Role: domainuser.RoleOwner},
		{ID: "buyer-1", Email: "buyer@example.com", Name: "Bob Buyer", PasswordHash: "x", Role: domainuser.RoleBuyer},
		{ID: "buyer-2", Email: "buyer2@example.com", Name: "Bea Buyer", PasswordHash: "x", Role: domainuser.RoleBuyer},
	} {
		user, err := domainuser.NewUser(u)
		require.NoError(t, err)
		require.NoError(t, f.store.Users.Save(ctx, user))
	}
	prop, err := domainproperties.NewProperty(domainproperties.CreateParams{
		ID: "prop-1", OwnerID: "owner-1", Title: "Sunny flat", Address: "Str. Lapusneanu 10",
		City: "Iasi", Price: domainproperties.Price{Amount: 450}, Transaction: domainproperties.TransactionRent,
		Rooms: 2, Bathrooms: 1,
	})
	require.NoError(t, err)
	require.NoError(t, f.store.Properties.Save(ctx, prop))
	return f
}

func (f *fixture) schedule() *ScheduleVisitHandler {
	return &ScheduleVisitHandler{UoWFactory: f.store.Factory(), Outbox: f.outbox, Now: func() time.Time { return f.now }}
}

func (f *fixture) cancel() *CancelVisitHandler {
	return &CancelVisitHandler{UoWFactory: f.store.Factory(), Outbox: f.outbox, Now: func() time.Time { return f.now }}
}

func (f *fixture) complete() *CompleteVisitHandler {
	return &CompleteVisitHandler{UoWFactory: f.store.Factory(), Outbox: f.outbox, Now: func() time.Time { return f.now }}
}

func (f *fixture) slots() *GetAvailableSlotsHandler {
	return &GetAvailableSlotsHandler{UoWFactory: f.store.Factory()}
}

func (f *fixture) mine() *ListMyVisitsHandler {
	return &ListMyVisitsHandler{UoWFactory: f.store.Factory()}
}

func eventNames(records []appoutbox.EventRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func TestAvailableSlotsForFreeDay(t *testing.T) {
	f := newFixture(t)
	res, err := f.slots().Handle(context.Background(), GetAvailableSlotsQuery{PropertyID: "prop-1", Date: "2024-06-01"})
	require.NoError(t, err)
	require.Len(t, res.Slots, 14)
	assert.Equal(t, "09:00", res.Slots[0].Time)
	assert.Equal(t, "15:30", res.Slots[13].Time)
	for _, s := range res.Slots {
		assert.True(t, s.Available, s.Time)
	}
}

func TestAvailableSlotsUnknownProperty(t *testing.T) {
	f := newFixture(t)
	_, err := f.slots().Handle(context.Background(), GetAvailableSlotsQuery{PropertyID: "missing", Date: "2024-06-01"})
	assert.True(t, fault.Is(err, fault.NotFound))
}

func TestBookCancelRebookScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cmd := ScheduleVisitCommand{PropertyID: "prop-1", BuyerID: "buyer-1", Date: "2024-06-01", Time: "10:00", Notes: "after work"}

	first, err := f.schedule().Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "scheduled", first.Status)
	assert.Equal(t, "Sunny flat", first.PropertyTitle)
	assert.Equal(t, "Bob Buyer", first.BuyerName)
	assert.Equal(t, "owner-1", first.OwnerID)

	slots, err := f.slots().Handle(ctx, GetAvailableSlotsQuery{PropertyID: "prop-1", Date: "2024-06-01"})
	require.NoError(t, err)
	for _, s := range slots.Slots {
		assert.Equal(t, s.Time != "10:00", s.Available, s.Time)
	}

	padded, err := f.slots().Handle(ctx, GetAvailableSlotsQuery{PropertyID: "prop-1", Date: " 2024-06-01 "})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", padded.Date)
	assert.Equal(t, slots.Slots, padded.Slots)

	cmd.BuyerID = "buyer-2"
	_, err = f.schedule().Handle(ctx, cmd)
	require.ErrorIs(t, err, domainvisits.ErrSlotTaken)
	assert.True(t, fault.Is(err, fault.Conflict))

	msg, err := f.cancel().Handle(ctx, CancelVisitCommand{VisitID: first.ID, ActorID: "buyer-1"})
	require.NoError(t, err)
	assert.True(t, msg.Success)

	second, err := f.schedule().Handle(ctx, cmd)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	assert.Equal(t, []string{
		domainvisits.EventVisitScheduled,
		domainvisits.EventVisitCancelled,
		domainvisits.EventVisitScheduled,
	}, eventNames(f.outbox.Pending()))
}

func TestScheduleRejectsOffGridTimeAndBadDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.schedule().Handle(ctx, ScheduleVisitCommand{PropertyID: "prop-1", BuyerID: "buyer-1", Date: "2024-06-01", Time: "16:00"})
	assert.ErrorIs(t, err, domainvisits.ErrInvalidTime)

	_, err = f.schedule().Handle(ctx, ScheduleVisitCommand{PropertyID: "prop-1", BuyerID: "buyer-1", Date: "01/06/2024", Time: "10:00"})
	assert.ErrorIs(t, err, domainvisits.ErrInvalidDate)

	_, err = f.schedule().Handle(ctx, ScheduleVisitCommand{PropertyID: "nope", BuyerID: "buyer-1", Date: "2024-06-01", Time: "10:00"})
	assert.True(t, fault.Is(err, fault.NotFound))
}

func TestCancelAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	visit, err := f.schedule().Handle(ctx, ScheduleVisitCommand{PropertyID: "prop-1", BuyerID: "buyer-1", Date: "2024-06-01", Time: "11:00"})
	require.NoError(t, err)

	_, err = f.cancel().Handle(ctx, CancelVisitCommand{VisitID: visit.ID, ActorID: "buyer-2"})
	assert.True(t, fault.Is(err, fault.Forbidden))

	_, err = f.cancel().Handle(ctx, CancelVisitCommand{VisitID: visit.ID, ActorID: "owner-2"})
	assert.True(t, fault.Is(err, fault.Forbidden))

	_, err = f.cancel().Handle(ctx, CancelVisitCommand{VisitID: "missing", ActorID: "buyer-1"})
	assert.True(t, fault.Is(err, fault.NotFound))

	_, err = f.cancel().Handle(ctx, CancelVisitCommand{VisitID: visit.ID, ActorID: "owner-1"})
	require.NoError(t, err)

	_, err = f.cancel().Handle(ctx, CancelVisitCommand{VisitID: visit.ID, ActorID: "owner-1"})
	assert.ErrorIs(t, err, domainvisits.ErrInvalidTransition)
}

func TestCompleteIsOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	visit, err := f.schedule().Handle(ctx, ScheduleVisitCommand{PropertyID: "prop-1", BuyerID: "buyer-1", Date: "2024-06-01", Time: "12:00"})
	require.NoError(t, err)

	_, err = f.complete().Handle(ctx, CompleteVisitCommand{VisitID: visit.ID, ActorID: "buyer-1"})
	assert.True(t, fault.Is(err, fault.Forbidden))

	done, err := f.complete().Handle(ctx, CompleteVisitCommand{VisitID: visit.ID, ActorID: "owner-1"})
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Status)

	slots, err := f.slots().Handle(ctx, GetAvailableSlotsQuery{PropertyID: "prop-1", Date: "2024-06-01"})
	require.NoError(t, err)
	for _, s := range slots.Slots {
		assert.True(t, s.Available, s.Time)
	}
}

func TestListMyVisitsByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, slot := range []string{"14:00", "09:30"} {
		_, err := f.schedule().Handle(ctx, ScheduleVisitCommand{PropertyID: "prop-1", BuyerID: "buyer-1", Date: "2024-06-02", Time: slot})
		require.NoError(t, err)
	}
	early, err := f.schedule().Handle(ctx, ScheduleVisitCommand{PropertyID: "prop-1", BuyerID: "buyer-2", Date: "2024-06-01", Time: "15:30"})
	require.NoError(t, err)
	_, err = f.cancel().Handle(ctx, CancelVisitCommand{VisitID: early.ID, ActorID: "buyer-2"})
	require.NoError(t, err)

	buyer, err := f.mine().Handle(ctx, ListMyVisitsQuery{ActorID: "buyer-1", ActorRole: domainuser.RoleBuyer})
	require.NoError(t, err)
	require.Len(t, buyer, 2)
	assert.Equal(t, "09:30", buyer[0].VisitTime)
	assert.Equal(t, "14:00", buyer[1].VisitTime)

	owner, err := f.mine().Handle(ctx, ListMyVisitsQuery{ActorID: "owner-1", ActorRole: domainuser.RoleOwner})
	require.NoError(t, err)
	assert.Len(t, owner, 2)

	none, err := f.mine().Handle(ctx, ListMyVisitsQuery{ActorID: "owner-2", ActorRole: domainuser.RoleOwner})
	require.NoError(t, err)
	assert.Empty(t, none)

	cancelledOnly, err := f.mine().Handle(ctx, ListMyVisitsQuery{ActorID: "buyer-2", ActorRole: domainuser.RoleBuyer})
	require.NoError(t, err)
	assert.Empty(t, cancelledOnly)
}
