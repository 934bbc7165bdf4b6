package listener

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fekuna/omnipos-structured-data/internal/logger"
	"github.com/fekuna/omnipos-structured-data/internal/metrics"
	"github.com/fekuna/omnipos-structured-data/internal/structureddata/dto"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) ProductDocument(ctx context.Context, input *dto.ProductDocumentInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *mockUseCase) CategoryDocument(ctx context.Context, input *dto.CategoryDocumentInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *mockUseCase) SearchDocument(ctx context.Context, input *dto.SearchDocumentInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *mockUseCase) InvalidateProduct(ctx context.Context, merchantID, productID string) error {
	return m.Called(ctx, merchantID, productID).Error(0)
}

func (m *mockUseCase) InvalidateMerchant(ctx context.Context, merchantID string) error {
	return m.Called(ctx, merchantID).Error(0)
}

// fakeReader replays queued results, then blocks until the context ends.
type fakeReader struct {
	mu      sync.Mutex
	results []readResult
}

type readResult struct {
	msg kafka.Message
	err error
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.results) > 0 {
		next := r.results[0]
		r.results = r.results[1:]
		r.mu.Unlock()
		return next.msg, next.err
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func newListener(uc *mockUseCase) *InvalidationListener {
	return NewInvalidationListener(&fakeReader{}, uc, logger.NewNop())
}

func TestProcessMessage_ProductEvents(t *testing.T) {
	for _, eventType := range []string{EventProductUpdated, EventProductDeleted, EventVariantUpdated, EventInventoryAdjusted, EventPriceChanged} {
		t.Run(eventType, func(t *testing.T) {
			uc := new(mockUseCase)
			uc.On("InvalidateProduct", mock.Anything, "m-1", "p-1").Return(nil).Once()

			before := testutil.ToFloat64(metrics.InvalidationEvents.WithLabelValues(eventType, "ok"))
			newListener(uc).processMessage(context.Background(),
				[]byte(`{"event_id":"e-1","event_type":"`+eventType+`","payload":{"merchant_id":"m-1","product_id":"p-1"}}`))

			uc.AssertExpectations(t)
			assert.Equal(t, before+1, testutil.ToFloat64(metrics.InvalidationEvents.WithLabelValues(eventType, "ok")))
		})
	}
}

func TestProcessMessage_CategoryEvents(t *testing.T) {
	for _, eventType := range []string{EventCategoryUpdated, EventCategoryDeleted} {
		uc := new(mockUseCase)
		uc.On("InvalidateMerchant", mock.Anything, "m-1").Return(nil).Once()

		newListener(uc).processMessage(context.Background(),
			[]byte(`{"event_type":"`+eventType+`","payload":{"merchant_id":"m-1","category_id":"c-1"}}`))

		uc.AssertExpectations(t)
	}
}

func TestProcessMessage_Skipped(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{not json`},
		{name: "unknown event", body: `{"event_type":"OrderCreated","payload":{"merchant_id":"m-1"}}`},
		{name: "missing merchant", body: `{"event_type":"ProductUpdated","payload":{"product_id":"p-1"}}`},
		{name: "missing product", body: `{"event_type":"PriceChanged","payload":{"merchant_id":"m-1"}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uc := new(mockUseCase)
			newListener(uc).processMessage(context.Background(), []byte(tc.body))
			uc.AssertNotCalled(t, "InvalidateProduct", mock.Anything, mock.Anything, mock.Anything)
			uc.AssertNotCalled(t, "InvalidateMerchant", mock.Anything, mock.Anything)
		})
	}
}

func TestProcessMessage_InvalidationError(t *testing.T) {
	uc := new(mockUseCase)
	uc.On("InvalidateProduct", mock.Anything, "m-1", "p-1").Return(errors.New("redis down")).Once()

	before := testutil.ToFloat64(metrics.InvalidationEvents.WithLabelValues(EventProductUpdated, "error"))
	newListener(uc).processMessage(context.Background(),
		[]byte(`{"event_type":"ProductUpdated","payload":{"merchant_id":"m-1","product_id":"p-1"}}`))

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.InvalidationEvents.WithLabelValues(EventProductUpdated, "error")))
	uc.AssertExpectations(t)
}

func TestStart_ConsumesUntilCancelled(t *testing.T) {
	reader := &fakeReader{results: []readResult{
		{err: errors.New("broker unavailable")},
		{msg: kafka.Message{Value: []byte(`{"event_type":"ProductUpdated","payload":{"merchant_id":"m-1","product_id":"p-1"}}`)}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uc := new(mockUseCase)
	uc.On("InvalidateProduct", mock.Anything, "m-1", "p-1").Return(nil).Once().Run(func(mock.Arguments) { cancel() })

	l := NewInvalidationListener(reader, uc, logger.NewNop())
	l.retryDelay = time.Millisecond

	done := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop after context cancel")
	}
	uc.AssertExpectations(t)
}
