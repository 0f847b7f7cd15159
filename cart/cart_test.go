package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laobservation/veggie-fruit-express-sub001/domain"
	"github.com/laobservation/veggie-fruit-express-sub001/store"
)

// failingStore always refuses writes, to prove persistence failures never
// surface through the container.
type failingStore struct {
	mu    sync.Mutex
	saves int
}

func (s *failingStore) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("backend down")
}

func (s *failingStore) Save(context.Context, string, []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return errors.New("backend down")
}

func (s *failingStore) Delete(context.Context, string) error {
	return errors.New("backend down")
}

func testProduct(id string, price float64) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     "Carrots " + id,
		Price:    price,
		Unit:     "kg",
		Category: "vegetables",
	}
}

func TestAddItem_NewLine(t *testing.T) {
	c := New(nil, "")

	c.AddItem(testProduct("1", 2.99), 1)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "1", lines[0].Product.ID)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, 1, c.TotalItems())
	assert.InDelta(t, 2.99, c.TotalPrice(), 0.0001)
}

func TestAddItem_ExistingProduct_AccumulatesQuantity(t *testing.T) {
	c := New(nil, "")
	p := testProduct("1", 2.99)

	c.AddItem(p, 2)
	c.AddItem(p, 3)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, 5, c.TotalItems())
}

func TestAddItem_NeverDuplicatesProductLines(t *testing.T) {
	c := New(nil, "")

	for i := 0; i < 10; i++ {
		c.AddItem(testProduct("1", 1.50), 1)
		c.AddItem(testProduct("2", 3.20), 1)
		c.AddItem(testProduct("1", 1.50), 2)
	}

	seen := map[string]bool{}
	for _, l := range c.Lines() {
		assert.False(t, seen[l.Product.ID], "duplicate line for product %s", l.Product.ID)
		seen[l.Product.ID] = true
	}
	assert.Len(t, c.Lines(), 2)
}

func TestAddItem_ZeroQuantityDefaultsToOne(t *testing.T) {
	c := New(nil, "")

	c.AddItem(testProduct("1", 2.00), 0)

	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 1, c.Lines()[0].Quantity)
}

func TestAddItem_PreservesInsertionOrder(t *testing.T) {
	c := New(nil, "")

	c.AddItem(testProduct("b", 1), 1)
	c.AddItem(testProduct("a", 1), 1)
	c.AddItem(testProduct("c", 1), 1)
	c.AddItem(testProduct("a", 1), 1) // repeat must not reorder

	lines := c.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "b", lines[0].Product.ID)
	assert.Equal(t, "a", lines[1].Product.ID)
	assert.Equal(t, "c", lines[2].Product.ID)
}

// Repeat-adding a product leaves the existing line's services untouched,
// even when different services are passed. Known storefront quirk: only
// the quantity accumulates, the first add's services win.
func TestAddItem_RepeatAdd_KeepsOriginalServices(t *testing.T) {
	c := New(nil, "")
	p := testProduct("1", 4.50)
	washed := domain.ServiceOption{ID: "wash", Name: "Pre-washed", Price: 1.00}
	peeled := domain.ServiceOption{ID: "peel", Name: "Peeled", Price: 2.00}

	c.AddItem(p, 1, washed)
	c.AddItem(p, 1, peeled)

	lines := c.Lines()
	require.Len(t, lines, 1)
	require.Len(t, lines[0].Services, 1)
	assert.Equal(t, "wash", lines[0].Services[0].ID)
}

func TestRemoveItem(t *testing.T) {
	c := New(nil, "")
	c.AddItem(testProduct("1", 2.99), 1)
	c.AddItem(testProduct("2", 1.99), 1)

	c.RemoveItem("1")

	require.Len(t, c.Lines(), 1)
	assert.Equal(t, "2", c.Lines()[0].Product.ID)
}

func TestRemoveItem_Idempotent(t *testing.T) {
	c := New(nil, "")
	c.AddItem(testProduct("1", 2.99), 1)

	c.RemoveItem("missing")
	before := c.Lines()
	c.RemoveItem("missing")

	assert.Equal(t, before, c.Lines())
	assert.Equal(t, 1, c.TotalItems())
}

func TestUpdateQuantity_SetsAbsoluteValue(t *testing.T) {
	c := New(nil, "")
	c.AddItem(testProduct("1", 2.99), 2)

	c.UpdateQuantity("1", 7)

	assert.Equal(t, 7, c.Lines()[0].Quantity)
}

func TestUpdateQuantity_ZeroOrNegativeRemovesLine(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
	}{
		{"zero", 0},
		{"negative", -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(nil, "")
			c.AddItem(testProduct("1", 2.99), 3)

			c.UpdateQuantity("1", tt.quantity)

			assert.Empty(t, c.Lines())
			assert.Equal(t, 0, c.TotalItems())
		})
	}
}

func TestUpdateQuantity_AbsentProduct_NoOp(t *testing.T) {
	c := New(nil, "")
	c.AddItem(testProduct("1", 2.99), 1)

	c.UpdateQuantity("missing", 5)

	assert.Equal(t, 1, c.TotalItems())
}

func TestClear(t *testing.T) {
	c := New(nil, "")
	c.AddItem(testProduct("1", 2.99), 2)
	c.AddItem(testProduct("2", 1.50), 1)

	c.Clear()

	assert.Empty(t, c.Lines())
	assert.Equal(t, 0, c.TotalItems())
	assert.Zero(t, c.TotalPrice())
}

func TestTotals_ExcludeServiceSurcharges(t *testing.T) {
	c := New(nil, "")
	washed := domain.ServiceOption{ID: "wash", Name: "Pre-washed", Price: 1.00}

	c.AddItem(testProduct("1", 2.99), 3, washed)
	c.AddItem(testProduct("2", 1.50), 2)

	assert.Equal(t, 5, c.TotalItems())
	assert.InDelta(t, 2.99*3+1.50*2, c.TotalPrice(), 0.0001)

	// The surcharge joins at order time instead.
	total := domain.OrderTotal(c.Lines(), 0)
	assert.InDelta(t, 2.99*3+1.50*2+1.00, total, 0.0001)
}

func TestAddItem_RaisesNotificationAndClearsReminder(t *testing.T) {
	c := New(nil, "")
	c.ToggleReminder(true)

	c.AddItem(testProduct("1", 2.99), 2)

	n := c.Notification()
	assert.True(t, n.Visible)
	assert.Equal(t, "1", n.Product.ID)
	assert.Equal(t, 2, n.Quantity)
	assert.False(t, c.ReminderShown())
}

func TestAddItem_NotificationCarriesLineQuantity(t *testing.T) {
	c := New(nil, "")
	p := testProduct("1", 2.99)

	c.AddItem(p, 2)
	c.AddItem(p, 3)

	// The toast shows the line's total, not the increment.
	assert.Equal(t, 5, c.Notification().Quantity)
}

func TestHideNotification_RaisesReminder(t *testing.T) {
	c := New(nil, "")
	c.AddItem(testProduct("1", 2.99), 1)

	c.HideNotification()

	assert.False(t, c.Notification().Visible)
	assert.True(t, c.ReminderShown())
}

func TestOpen_ClearsNotificationAndReminder(t *testing.T) {
	c := New(nil, "")
	c.AddItem(testProduct("1", 2.99), 1)
	c.HideNotification()
	require.True(t, c.ReminderShown())

	c.Open()

	assert.True(t, c.IsOpen())
	assert.False(t, c.Notification().Visible)
	assert.False(t, c.ReminderShown())

	c.Close()
	assert.False(t, c.IsOpen())
}

func TestPersist_WritesSnapshotOnEveryMutation(t *testing.T) {
	st := store.NewMemoryStore()
	c := New(st, store.CartKey)

	c.AddItem(testProduct("1", 2.99), 2)

	data, err := st.Load(context.Background(), store.CartKey)
	require.NoError(t, err)

	var snap domain.CartSnapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, domain.SnapshotVersion, snap.Version)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 2, snap.Lines[0].Quantity)

	c.RemoveItem("1")
	data, err = st.Load(context.Background(), store.CartKey)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Empty(t, snap.Lines)
}

func TestLoad_RoundTrip(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	c := New(st, store.CartKey)
	washed := domain.ServiceOption{ID: "wash", Name: "Pre-washed", Price: 1.00}
	c.AddItem(testProduct("1", 2.99), 2, washed)
	c.AddItem(testProduct("2", 1.50), 1)

	reloaded := New(st, store.CartKey)
	require.NoError(t, reloaded.Load(ctx))

	assert.Equal(t, c.Lines(), reloaded.Lines())
	assert.Equal(t, 3, reloaded.TotalItems())
}

func TestLoad_AbsentSnapshot_StartsEmpty(t *testing.T) {
	c := New(store.NewMemoryStore(), store.CartKey)

	require.NoError(t, c.Load(context.Background()))
	assert.Empty(t, c.Lines())
}

func TestLoad_CorruptSnapshot_StartsEmpty(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Save(ctx, store.CartKey, []byte("{not json")))

	c := New(st, store.CartKey)
	require.NoError(t, c.Load(ctx))
	assert.Empty(t, c.Lines())
}

func TestMutations_SurviveFailingStore(t *testing.T) {
	st := &failingStore{}
	c := New(st, store.CartKey)

	c.AddItem(testProduct("1", 2.99), 1)
	c.UpdateQuantity("1", 4)
	c.Clear()
	c.AddItem(testProduct("2", 1.50), 2)

	// In-memory state stays authoritative even though every save failed.
	assert.Equal(t, 2, c.TotalItems())
	assert.Equal(t, 4, st.saves)
}

func TestScenario_AddAccumulateRemove(t *testing.T) {
	c := New(nil, "")
	p := testProduct("1", 2.99)

	c.AddItem(p, 1)
	assert.Equal(t, 1, c.TotalItems())
	assert.InDelta(t, 2.99, c.TotalPrice(), 0.0001)

	c.AddItem(p, 2)
	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 3, c.TotalItems())

	c.RemoveItem("1")
	assert.Empty(t, c.Lines())
	assert.Equal(t, 0, c.TotalItems())
}
