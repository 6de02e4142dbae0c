package pipeline_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/voicebill/internal/account"
	"github.com/MrJamesThe3rd/voicebill/internal/customer"
	"github.com/MrJamesThe3rd/voicebill/internal/delivery"
	"github.com/MrJamesThe3rd/voicebill/internal/extraction"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
	"github.com/MrJamesThe3rd/voicebill/internal/llm"
	"github.com/MrJamesThe3rd/voicebill/internal/pipeline"
	"github.com/MrJamesThe3rd/voicebill/internal/scalar"
	"github.com/MrJamesThe3rd/voicebill/internal/sequence"
	"github.com/MrJamesThe3rd/voicebill/internal/sequence/redisstore"
)

const (
	accountID   = "acct-1"
	massageText = "Drei Massagen à 80 Euro für Max Mustermann, heute, inklusive Mehrwertsteuer"
)

const massageReply = `{"client": "Max Mustermann", "service": "Massage", "quantity": 3, "unit_price": 80.00,
	"tax_rate": 0.19, "invoice_date": "today", "currency": "EUR", "language": "de"}`

var now = time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)

type fakeSender struct {
	mu   sync.Mutex
	sent []delivery.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg delivery.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, msg)

	return nil
}

type fixture struct {
	completer   *extraction.MockCompleter
	transcriber *pipeline.MockTranscriber
	allocator   *pipeline.MockAllocator
	repo        *invoice.MockRepository
	customers   *pipeline.MockCustomers
	suggester   *pipeline.MockSuggester
	profiles    *pipeline.MockProfiles
	renderer    *pipeline.MockRenderer
	idem        *pipeline.MockIdempotency
	sender      *fakeSender
	deps        pipeline.Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &fixture{
		completer:   extraction.NewMockCompleter(ctrl),
		transcriber: pipeline.NewMockTranscriber(ctrl),
		allocator:   pipeline.NewMockAllocator(ctrl),
		repo:        invoice.NewMockRepository(ctrl),
		customers:   pipeline.NewMockCustomers(ctrl),
		suggester:   pipeline.NewMockSuggester(ctrl),
		profiles:    pipeline.NewMockProfiles(ctrl),
		renderer:    pipeline.NewMockRenderer(ctrl),
		idem:        pipeline.NewMockIdempotency(ctrl),
		sender:      &fakeSender{},
	}

	clock := func() time.Time { return now }

	f.deps = pipeline.Deps{
		Extractor:   extraction.NewExtractor(f.completer),
		Transcriber: f.transcriber,
		Allocator:   f.allocator,
		Invoices:    invoice.NewService(f.repo, invoice.WithClock(clock)),
		Customers:   f.customers,
		Suggester:   f.suggester,
		Profiles:    f.profiles,
		Renderer:    f.renderer,
		Sender:      f.sender,
		Idempotency: f.idem,
	}

	return f
}

func (f *fixture) pipeline() *pipeline.Pipeline {
	return pipeline.New(f.deps, pipeline.WithClock(func() time.Time { return now }))
}

func (f *fixture) expectLookups() {
	f.suggester.EXPECT().Suggest(gomock.Any(), accountID, gomock.Any()).Return("", nil).AnyTimes()
	f.customers.EXPECT().Resolve(gomock.Any(), accountID, gomock.Any()).Return(nil, nil).AnyTimes()
}

func (f *fixture) expectStored() {
	f.repo.EXPECT().
		CreateInvoice(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
			inv.ID = uuid.New()
			return nil
		}).
		AnyTimes()
}

func TestPipeline_CreateFromText_Massage(t *testing.T) {
	f := newFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(massageReply, nil)
	f.suggester.EXPECT().Suggest(gomock.Any(), accountID, "Massage").Return("", nil)
	f.customers.EXPECT().Resolve(gomock.Any(), accountID, "Max Mustermann").Return(nil, nil)
	f.allocator.EXPECT().Next(gomock.Any(), accountID).Return(sequence.Number{Value: 4}, nil)
	f.expectStored()

	inv, err := f.pipeline().CreateFromText(context.Background(), pipeline.CreateRequest{
		AccountID: accountID,
		Text:      massageText,
	})
	require.NoError(t, err)

	rounded := inv.Totals.Rounded()

	assert.Equal(t, "0004", inv.Number)
	assert.Equal(t, int64(4), inv.Sequence)
	assert.Equal(t, invoice.StatusDraft, inv.Status)
	assert.Equal(t, "Max Mustermann", inv.ClientName)
	assert.Equal(t, "2025-05-02", inv.IssueDate.Format(time.DateOnly))
	assert.Equal(t, "2025-05-16", inv.DueDate.Format(time.DateOnly))
	assert.Equal(t, "240.00", rounded.Subtotal.StringFixed(2))
	assert.Equal(t, "45.60", rounded.TaxAmount.StringFixed(2))
	assert.Equal(t, "285.60", rounded.Total.StringFixed(2))
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Massage", inv.Items[0].Service)
}

func TestPipeline_CreateFromText_AppliesLearnedLabelAndCustomer(t *testing.T) {
	f := newFixture(t)
	known := &customer.Customer{ID: uuid.New(), Name: "Max Mustermann"}

	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(massageReply, nil)
	f.suggester.EXPECT().Suggest(gomock.Any(), accountID, "Massage").Return("Klassische Massage (60 min)", nil)
	f.customers.EXPECT().Resolve(gomock.Any(), accountID, "Max Mustermann").Return(known, nil)
	f.allocator.EXPECT().Next(gomock.Any(), accountID).Return(sequence.Number{Value: 1, Prefix: "RE-"}, nil)
	f.expectStored()

	inv, err := f.pipeline().CreateFromText(context.Background(), pipeline.CreateRequest{AccountID: accountID, Text: massageText})
	require.NoError(t, err)

	assert.Equal(t, "RE-0001", inv.Number)
	assert.Equal(t, "Klassische Massage (60 min)", inv.Items[0].Service)
	require.NotNil(t, inv.CustomerID)
	assert.Equal(t, known.ID, *inv.CustomerID)
}

func TestPipeline_CreateFromText_ConcurrentRequestsGetDistinctNumbers(t *testing.T) {
	f := newFixture(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := redisstore.New(rdb)

	for range 3 {
		_, _, err := store.Increment(context.Background(), accountID)
		require.NoError(t, err)
	}

	f.deps.Allocator = sequence.NewAllocator(store)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(massageReply, nil).Times(2)
	f.expectLookups()
	f.expectStored()

	p := f.pipeline()

	var (
		g       errgroup.Group
		mu      sync.Mutex
		numbers []string
	)

	for range 2 {
		g.Go(func() error {
			inv, err := p.CreateFromText(context.Background(), pipeline.CreateRequest{AccountID: accountID, Text: massageText})
			if err != nil {
				return err
			}

			mu.Lock()
			numbers = append(numbers, inv.Number)
			mu.Unlock()

			return nil
		})
	}

	require.NoError(t, g.Wait())

	sort.Strings(numbers)
	assert.Equal(t, []string{"0004", "0005"}, numbers)
}

func TestPipeline_CreateFromText_MalformedTwiceAllocatesNothing(t *testing.T) {
	f := newFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("not json", nil).Times(2)

	inv, err := f.pipeline().CreateFromText(context.Background(), pipeline.CreateRequest{AccountID: accountID, Text: massageText})
	assert.Nil(t, inv)

	var extErr *extraction.Error
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, extraction.ReasonMalformed, extErr.Reason)
}

func TestPipeline_CreateFromText_ZeroQuantityAllocatesNothing(t *testing.T) {
	f := newFixture(t)
	f.completer.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		Return(`{"client": "Max", "service": "Massage", "quantity": 0, "unit_price": 80, "tax_rate": 0.19,
			"invoice_date": "today", "currency": "EUR", "language": "de"}`, nil)

	_, err := f.pipeline().CreateFromText(context.Background(), pipeline.CreateRequest{AccountID: accountID, Text: "Null Massagen"})

	var verr *scalar.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "quantity", verr.Field)
}

func TestPipeline_CreateFromText_CancelledBeforeAllocation(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	f.completer.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, []llm.Message) (string, error) {
			cancel()
			return massageReply, nil
		})
	f.expectLookups()

	_, err := f.pipeline().CreateFromText(ctx, pipeline.CreateRequest{AccountID: accountID, Text: massageText})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_CreateFromText_AllocationFailure(t *testing.T) {
	f := newFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(massageReply, nil)
	f.expectLookups()
	f.allocator.EXPECT().
		Next(gomock.Any(), accountID).
		Return(sequence.Number{}, &sequence.AllocationError{AccountID: accountID, Err: errors.New("db down")})

	_, err := f.pipeline().CreateFromText(context.Background(), pipeline.CreateRequest{AccountID: accountID, Text: massageText})

	var aerr *sequence.AllocationError
	assert.True(t, errors.As(err, &aerr))
}

func TestPipeline_CreateFromText_UnknownCustomerID(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(massageReply, nil)
	f.suggester.EXPECT().Suggest(gomock.Any(), accountID, "Massage").Return("", nil)
	f.customers.EXPECT().Get(gomock.Any(), accountID, id).Return(nil, customer.ErrNotFound)

	_, err := f.pipeline().CreateFromText(context.Background(), pipeline.CreateRequest{
		AccountID:  accountID,
		CustomerID: &id,
		Text:       massageText,
	})
	assert.ErrorIs(t, err, customer.ErrNotFound)
}

func TestPipeline_CreateFromText_Idempotency(t *testing.T) {
	t.Run("Replay", func(t *testing.T) {
		f := newFixture(t)
		stored := &invoice.Invoice{ID: uuid.New(), Number: "0004"}

		f.idem.EXPECT().Reserve(gomock.Any(), accountID, "key-1").Return(stored.ID.String(), nil)
		f.repo.EXPECT().GetInvoice(gomock.Any(), accountID, stored.ID).Return(stored, nil)

		got, err := f.pipeline().CreateFromText(context.Background(), pipeline.CreateRequest{
			AccountID: accountID, Text: massageText, IdempotencyKey: "key-1",
		})
		require.NoError(t, err)
		assert.Equal(t, stored, got)
	})

	t.Run("CompleteOnSuccess", func(t *testing.T) {
		f := newFixture(t)

		f.idem.EXPECT().Reserve(gomock.Any(), accountID, "key-1").Return("", nil)
		f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(massageReply, nil)
		f.expectLookups()
		f.allocator.EXPECT().Next(gomock.Any(), accountID).Return(sequence.Number{Value: 1}, nil)
		f.expectStored()
		f.idem.EXPECT().Complete(gomock.Any(), accountID, "key-1", gomock.Any()).Return(nil)

		_, err := f.pipeline().CreateFromText(context.Background(), pipeline.CreateRequest{
			AccountID: accountID, Text: massageText, IdempotencyKey: "key-1",
		})
		require.NoError(t, err)
	})

	t.Run("ReleaseOnFailure", func(t *testing.T) {
		f := newFixture(t)

		f.idem.EXPECT().Reserve(gomock.Any(), accountID, "key-1").Return("", nil)
		f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("", errors.New("503"))
		f.idem.EXPECT().Release(gomock.Any(), accountID, "key-1").Return(nil)

		_, err := f.pipeline().CreateFromText(context.Background(), pipeline.CreateRequest{
			AccountID: accountID, Text: massageText, IdempotencyKey: "key-1",
		})
		require.Error(t, err)
	})
}

func TestPipeline_CreateFromAudio(t *testing.T) {
	t.Run("Transcribed", func(t *testing.T) {
		f := newFixture(t)

		f.transcriber.EXPECT().Transcribe(gomock.Any(), []byte("RIFF"), "memo.wav", "de").Return(massageText, nil)
		f.completer.EXPECT().
			Complete(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msgs []llm.Message) (string, error) {
				assert.Equal(t, massageText, msgs[1].Content)
				return massageReply, nil
			})
		f.expectLookups()
		f.allocator.EXPECT().Next(gomock.Any(), accountID).Return(sequence.Number{Value: 7}, nil)
		f.expectStored()

		inv, err := f.pipeline().CreateFromAudio(context.Background(), pipeline.AudioRequest{
			AccountID: accountID, Audio: []byte("RIFF"), Filename: "memo.wav",
		})
		require.NoError(t, err)
		assert.Equal(t, "0007", inv.Number)
	})

	t.Run("TranscriptionFails", func(t *testing.T) {
		f := newFixture(t)
		f.transcriber.EXPECT().Transcribe(gomock.Any(), gomock.Any(), gomock.Any(), "de").Return("", errors.New("500"))

		_, err := f.pipeline().CreateFromAudio(context.Background(), pipeline.AudioRequest{AccountID: accountID, Audio: []byte("x")})

		var extErr *extraction.Error
		require.True(t, errors.As(err, &extErr))
		assert.Equal(t, extraction.ReasonUpstream, extErr.Reason)
	})

	t.Run("ReplaySkipsTranscription", func(t *testing.T) {
		f := newFixture(t)
		stored := &invoice.Invoice{ID: uuid.New(), Number: "0007"}

		f.idem.EXPECT().Reserve(gomock.Any(), accountID, "key-1").Return(stored.ID.String(), nil)
		f.repo.EXPECT().GetInvoice(gomock.Any(), accountID, stored.ID).Return(stored, nil)

		got, err := f.pipeline().CreateFromAudio(context.Background(), pipeline.AudioRequest{
			AccountID: accountID, Audio: []byte("RIFF"), Filename: "memo.wav", IdempotencyKey: "key-1",
		})
		require.NoError(t, err)
		assert.Equal(t, stored, got)
	})

	t.Run("TranscriptionFailureReleasesKey", func(t *testing.T) {
		f := newFixture(t)

		gomock.InOrder(
			f.idem.EXPECT().Reserve(gomock.Any(), accountID, "key-1").Return("", nil),
			f.transcriber.EXPECT().Transcribe(gomock.Any(), gomock.Any(), gomock.Any(), "de").Return("", errors.New("500")),
			f.idem.EXPECT().Release(gomock.Any(), accountID, "key-1").Return(nil),
		)

		_, err := f.pipeline().CreateFromAudio(context.Background(), pipeline.AudioRequest{
			AccountID: accountID, Audio: []byte("x"), IdempotencyKey: "key-1",
		})
		require.Error(t, err)
	})

	t.Run("Disabled", func(t *testing.T) {
		f := newFixture(t)
		f.deps.Transcriber = nil

		_, err := f.pipeline().CreateFromAudio(context.Background(), pipeline.AudioRequest{AccountID: accountID})
		assert.ErrorIs(t, err, pipeline.ErrTranscriptionDisabled)
	})
}

func TestPipeline_Preview(t *testing.T) {
	f := newFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(massageReply, nil)

	fields, err := f.pipeline().Preview(context.Background(), massageText)
	require.NoError(t, err)
	assert.Equal(t, int64(3), fields.Quantity)
}

func TestPipeline_EditLineItems_PaidInvoice(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	items := []invoice.LineItem{{Service: "Massage", Quantity: 3, UnitPrice: decimal.NewFromInt(80), TaxRate: decimal.RequireFromString("0.19")}}
	totals, err := invoice.Compute(items)
	require.NoError(t, err)

	stored := &invoice.Invoice{ID: id, AccountID: accountID, Status: invoice.StatusPaid, Items: items, Totals: totals}
	f.repo.EXPECT().GetInvoice(gomock.Any(), accountID, id).Return(stored, nil)

	_, err = f.pipeline().EditLineItems(context.Background(), accountID, id, []invoice.LineItem{
		{Service: "Massage", Quantity: 10, UnitPrice: decimal.NewFromInt(80), TaxRate: decimal.RequireFromString("0.19")},
	})

	var terr *invoice.InvalidTransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, int64(3), stored.Items[0].Quantity)
	assert.Equal(t, "285.60", stored.Totals.Rounded().Total.StringFixed(2))
}

func draftWithCustomer() (*invoice.Invoice, *customer.Customer) {
	cust := &customer.Customer{ID: uuid.New(), Name: "Max Mustermann", Email: "max@example.com"}

	return &invoice.Invoice{
		ID:         uuid.New(),
		AccountID:  accountID,
		CustomerID: &cust.ID,
		ClientName: cust.Name,
		Number:     "0004",
		Status:     invoice.StatusDraft,
		IssueDate:  now,
		DueDate:    now.AddDate(0, 0, 14),
	}, cust
}

func TestPipeline_TransitionInvoice_Send(t *testing.T) {
	f := newFixture(t)
	inv, cust := draftWithCustomer()
	profile := &account.Profile{AccountID: accountID, CompanyName: "Praxis Sonne"}

	f.repo.EXPECT().GetInvoice(gomock.Any(), accountID, inv.ID).Return(inv, nil)
	f.profiles.EXPECT().Get(gomock.Any(), accountID).Return(profile, nil)
	f.customers.EXPECT().Get(gomock.Any(), accountID, cust.ID).Return(cust, nil)
	f.renderer.EXPECT().Render(gomock.Any(), profile, cust).Return([]byte("%PDF-1.3"), nil)
	f.repo.EXPECT().
		UpdateStatus(gomock.Any(), gomock.Any(), invoice.StatusDraft).
		DoAndReturn(func(_ context.Context, got *invoice.Invoice, _ invoice.Status) error {
			assert.Len(t, f.sender.sent, 1, "email must be handed off before the status is stored")
			return nil
		})

	got, err := f.pipeline().TransitionInvoice(context.Background(), accountID, inv.ID, invoice.StatusSent)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusSent, got.Status)
	require.NotNil(t, got.SentAt)

	msg := f.sender.sent[0]
	assert.Equal(t, "max@example.com", msg.To)
	assert.Equal(t, "Rechnung 0004", msg.Subject)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "Rechnung_0004.pdf", msg.Attachments[0].Filename)
}

func TestPipeline_TransitionInvoice_DeliveryFailureKeepsDraft(t *testing.T) {
	f := newFixture(t)
	inv, cust := draftWithCustomer()
	f.sender.err = errors.New("smtp down")

	f.repo.EXPECT().GetInvoice(gomock.Any(), accountID, inv.ID).Return(inv, nil)
	f.profiles.EXPECT().Get(gomock.Any(), accountID).Return(&account.Profile{CompanyName: "Praxis"}, nil)
	f.customers.EXPECT().Get(gomock.Any(), accountID, cust.ID).Return(cust, nil)
	f.renderer.EXPECT().Render(gomock.Any(), gomock.Any(), gomock.Any()).Return([]byte("%PDF"), nil)

	_, err := f.pipeline().TransitionInvoice(context.Background(), accountID, inv.ID, invoice.StatusSent)
	require.Error(t, err)
}

func TestPipeline_TransitionInvoice_SendWithoutEmail(t *testing.T) {
	f := newFixture(t)
	inv, cust := draftWithCustomer()
	cust.Email = ""

	f.repo.EXPECT().GetInvoice(gomock.Any(), accountID, inv.ID).Return(inv, nil)
	f.profiles.EXPECT().Get(gomock.Any(), accountID).Return(&account.Profile{CompanyName: "Praxis"}, nil)
	f.customers.EXPECT().Get(gomock.Any(), accountID, cust.ID).Return(cust, nil)
	f.renderer.EXPECT().Render(gomock.Any(), gomock.Any(), gomock.Any()).Return([]byte("%PDF"), nil)

	_, err := f.pipeline().TransitionInvoice(context.Background(), accountID, inv.ID, invoice.StatusSent)

	var verr *scalar.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "email", verr.Field)
	assert.Empty(t, f.sender.sent)
}

func TestPipeline_TransitionInvoice_PaidNeedsNoDelivery(t *testing.T) {
	f := newFixture(t)
	inv, _ := draftWithCustomer()
	inv.Status = invoice.StatusSent

	f.repo.EXPECT().GetInvoice(gomock.Any(), accountID, inv.ID).Return(inv, nil)
	f.repo.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), invoice.StatusSent).Return(nil)

	got, err := f.pipeline().TransitionInvoice(context.Background(), accountID, inv.ID, invoice.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, got.Status)
	assert.Empty(t, f.sender.sent)
}

func TestPipeline_TransitionInvoice_Illegal(t *testing.T) {
	f := newFixture(t)
	inv, _ := draftWithCustomer()
	inv.Status = invoice.StatusPaid

	f.repo.EXPECT().GetInvoice(gomock.Any(), accountID, inv.ID).Return(inv, nil)

	_, err := f.pipeline().TransitionInvoice(context.Background(), accountID, inv.ID, invoice.StatusSent)

	var terr *invoice.InvalidTransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, invoice.StatusPaid, terr.From)
}

func TestPipeline_Document_WithoutProfile(t *testing.T) {
	f := newFixture(t)
	inv, cust := draftWithCustomer()

	f.repo.EXPECT().GetInvoice(gomock.Any(), accountID, inv.ID).Return(inv, nil)
	f.profiles.EXPECT().Get(gomock.Any(), accountID).Return(nil, account.ErrNotFound)
	f.customers.EXPECT().Get(gomock.Any(), accountID, cust.ID).Return(cust, nil)
	f.renderer.EXPECT().
		Render(gomock.Any(), gomock.Nil(), cust).
		Return(nil, &scalar.ValidationError{Field: "profile", Reason: "missing"})

	_, err := f.pipeline().Document(context.Background(), accountID, inv.ID)

	var verr *scalar.ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestPipeline_Document(t *testing.T) {
	f := newFixture(t)
	inv, cust := draftWithCustomer()

	f.repo.EXPECT().GetInvoice(gomock.Any(), accountID, inv.ID).Return(inv, nil)
	f.profiles.EXPECT().Get(gomock.Any(), accountID).Return(&account.Profile{CompanyName: "Praxis"}, nil)
	f.customers.EXPECT().Get(gomock.Any(), accountID, cust.ID).Return(cust, nil)
	f.renderer.EXPECT().Render(inv, gomock.Any(), cust).Return([]byte("%PDF-1.3"), nil)

	got, err := f.pipeline().Document(context.Background(), accountID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rechnung_0004.pdf", got.Filename)
	assert.Equal(t, []byte("%PDF-1.3"), got.Data)
}
