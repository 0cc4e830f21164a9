package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ouroboros/internal/price"
)

func px(v float64) price.Price { return price.FromReal(v) }

func add(b *Book, id string, side Side, p OrderPrice, origSize, openSize float64) error {
	return b.OnAdd(NewOrderEvent{
		OrderID: id, Side: side, Px: p,
		OrigSize: px(origSize), OpenSize: px(openSize),
	})
}

func TestTotalSizeAccrual(t *testing.T) {
	b := New()
	require.NoError(t, add(b, "order1", Bid, Limit(px(10.00)), 100, 0))
	require.NoError(t, add(b, "order2", Bid, Limit(px(10.00)), 90, 0))
	require.NoError(t, add(b, "order3", Ask, Limit(px(10.01)), 90, 0))

	bidLevel, ok := b.PriceLevel(Bid, px(10.00))
	require.True(t, ok)
	assert.Equal(t, px(190), bidLevel.TotalSize)

	askLevel, ok := b.PriceLevel(Ask, px(10.01))
	require.True(t, ok)
	assert.Equal(t, px(90), askLevel.TotalSize)
}

func TestOpenTracking(t *testing.T) {
	b := New()
	require.NoError(t, add(b, "order1", Bid, Limit(px(10.00)), 100, 0))
	level, ok := b.PriceLevel(Bid, px(10.00))
	require.True(t, ok)
	assert.Equal(t, px(0), level.OpenSize)

	require.NoError(t, add(b, "order2", Bid, Limit(px(10.00)), 90, 0))
	assert.Equal(t, px(0), level.OpenSize)

	require.NoError(t, b.OnOpen(OpenEvent{OrderID: "order2", RemainingSize: px(90)}))
	assert.Equal(t, px(90), level.OpenSize)
}

func TestSimpleMatch(t *testing.T) {
	b := New()
	require.NoError(t, add(b, "order1", Bid, Limit(px(10.00)), 100, 0))
	require.NoError(t, b.OnOpen(OpenEvent{OrderID: "order1", RemainingSize: px(100)}))
	require.NoError(t, add(b, "order2", Ask, Limit(px(9.90)), 40, 0))

	require.NoError(t, b.OnMatch(MatchEvent{
		MakerOrderID: "order1", TakerOrderID: "order2",
		Side: Bid, Price: px(10.00), Size: px(40),
	}))

	level, ok := b.PriceLevel(Bid, px(10.00))
	require.True(t, ok)
	assert.Equal(t, px(60), level.OpenSize)
}

func TestMarketOrderMatch(t *testing.T) {
	b := New()
	require.NoError(t, add(b, "order1", Bid, Limit(px(10.00)), 100, 0))
	require.NoError(t, b.OnOpen(OpenEvent{OrderID: "order1", RemainingSize: px(100)}))
	require.NoError(t, add(b, "order2", Ask, Market(), 40, 0))

	require.NoError(t, b.OnMatch(MatchEvent{
		MakerOrderID: "order1", TakerOrderID: "order2",
		Side: Bid, Price: px(10.00), Size: px(40),
	}))

	level, ok := b.PriceLevel(Bid, px(10.00))
	require.True(t, ok)
	assert.Equal(t, px(60), level.OpenSize)

	_, ok = b.PriceLevel(Ask, px(0))
	assert.False(t, ok, "market side exposes no level via the price-keyed accessor")
}

func TestChangeReducesSize(t *testing.T) {
	b := New()
	require.NoError(t, add(b, "order1", Ask, Limit(px(10.00)), 100, 0))
	require.NoError(t, b.OnOpen(OpenEvent{OrderID: "order1", RemainingSize: px(100)}))

	require.NoError(t, b.OnChange(ChangeEvent{
		OrderID: "order1", Price: Limit(px(10.00)),
		OldSize: px(100), NewSize: px(40),
	}))

	level, ok := b.PriceLevel(Ask, px(10.00))
	require.True(t, ok)
	assert.Equal(t, px(40), level.OpenSize)
}

func TestInteractingOrders(t *testing.T) {
	b := New()
	require.NoError(t, add(b, "order3", Ask, Limit(px(9.99)), 50, 0))
	require.NoError(t, add(b, "order1", Bid, Limit(px(10.00)), 100, 0))
	require.NoError(t, add(b, "order2", Bid, Limit(px(10.00)), 90, 0))

	require.NoError(t, b.OnOpen(OpenEvent{OrderID: "order3", RemainingSize: px(50)}))
	require.NoError(t, b.OnOpen(OpenEvent{OrderID: "order1", RemainingSize: px(100)}))

	require.NoError(t, b.OnMatch(MatchEvent{
		MakerOrderID: "order3", TakerOrderID: "order2",
		Side: Ask, Price: px(9.99), Size: px(50),
	}))
	require.NoError(t, b.OnDone(DoneEvent{OrderID: "order3", Reason: Filled}))

	bidLevel, ok := b.PriceLevel(Bid, px(10.00))
	require.True(t, ok)

	require.NoError(t, b.OnOpen(OpenEvent{OrderID: "order2", RemainingSize: px(40)}))
	assert.Equal(t, px(140), bidLevel.OpenSize)

	require.NoError(t, b.OnDone(DoneEvent{OrderID: "order2", Reason: Canceled}))
	assert.Equal(t, px(100), bidLevel.OpenSize)
}

func TestDoneFilledRequiresZeroResidual(t *testing.T) {
	b := New()
	require.NoError(t, add(b, "order1", Bid, Limit(px(10.00)), 100, 0))
	require.NoError(t, b.OnOpen(OpenEvent{OrderID: "order1", RemainingSize: px(100)}))

	err := b.OnDone(DoneEvent{OrderID: "order1", Reason: Filled})
	assert.ErrorIs(t, err, ErrNonZeroResidualOnFill)
}

func TestDoneFilledWithZeroResidual(t *testing.T) {
	b := New()
	require.NoError(t, add(b, "order1", Bid, Limit(px(10.00)), 100, 0))
	require.NoError(t, b.OnOpen(OpenEvent{OrderID: "order1", RemainingSize: px(100)}))
	require.NoError(t, b.OnMatch(MatchEvent{
		MakerOrderID: "order1", TakerOrderID: "whoever",
		Side: Bid, Price: px(10.00), Size: px(100),
	}))

	require.NoError(t, b.OnDone(DoneEvent{OrderID: "order1", Reason: Filled}))
	order, ok := b.Order("order1")
	require.True(t, ok)
	assert.True(t, order.OpenSize.IsZero())
}

func TestUnknownOrderIsFatal(t *testing.T) {
	b := New()
	assert.ErrorIs(t, b.OnOpen(OpenEvent{OrderID: "ghost", RemainingSize: px(10)}), ErrUnknownOrder)
	assert.ErrorIs(t, b.OnMatch(MatchEvent{MakerOrderID: "ghost", Size: px(1)}), ErrUnknownOrder)
	assert.ErrorIs(t, b.OnChange(ChangeEvent{OrderID: "ghost", OldSize: px(1)}), ErrUnknownOrder)
	assert.ErrorIs(t, b.OnDone(DoneEvent{OrderID: "ghost"}), ErrUnknownOrder)
}

func TestChangeRejectsPositiveDelta(t *testing.T) {
	b := New()
	require.NoError(t, add(b, "order1", Ask, Limit(px(10.00)), 100, 0))
	require.NoError(t, b.OnOpen(OpenEvent{OrderID: "order1", RemainingSize: px(100)}))

	err := b.OnChange(ChangeEvent{
		OrderID: "order1", Price: Limit(px(10.00)),
		OldSize: px(40), NewSize: px(100),
	})
	assert.ErrorIs(t, err, ErrPositiveChangeDelta)
}

func TestChangeOnMarketOrderSkipsLevel(t *testing.T) {
	b := New()
	require.NoError(t, add(b, "order1", Bid, Market(), 100, 100))

	require.NoError(t, b.OnChange(ChangeEvent{
		OrderID: "order1", Price: Market(),
		OldSize: px(100), NewSize: px(60),
	}))

	order, ok := b.Order("order1")
	require.True(t, ok)
	assert.Equal(t, px(60), order.OpenSize)
}

func TestLevelChangeNotification(t *testing.T) {
	b := New()
	var calls int
	b.OnLevelChange = func(side Side, p OrderPrice, old, next price.Price) {
		calls++
	}
	require.NoError(t, add(b, "order1", Bid, Limit(px(10.00)), 100, 0))
	require.NoError(t, b.OnOpen(OpenEvent{OrderID: "order1", RemainingSize: px(100)}))
	assert.Equal(t, 2, calls)
}

func TestUnmarshalFeedMessage(t *testing.T) {
	line := []byte(`{"type":"received","sequence":1,"time":2,"order_id":"o1","side":"buy","order_type":"limit","price":"10.00","size":"100"}`)
	ev, err := UnmarshalFeedMessage(line)
	require.NoError(t, err)
	newOrder, ok := ev.(NewOrderEvent)
	require.True(t, ok)
	assert.Equal(t, "o1", newOrder.OrderID)
	assert.Equal(t, Bid, newOrder.Side)
	assert.Equal(t, px(100), newOrder.OrigSize)
	assert.Equal(t, uint64(1), newOrder.Sequence())
}
