package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/trace/noop"

	"bgv/internal/verification/badge"
	"bgv/internal/verification/classifier"
	"bgv/internal/verification/events"
	"bgv/internal/verification/inflight"
	"bgv/internal/verification/menu"
	"bgv/internal/verification/models"
	"bgv/internal/verification/navigation"
	"bgv/internal/verification/providers"
	"bgv/internal/verification/store"
	id "bgv/pkg/domain"
	dErrors "bgv/pkg/domain-errors"
	"bgv/pkg/testutil"
)

type stubInvoker struct {
	mu     sync.Mutex
	calls  int
	respFn func(ctx context.Context, method models.Method, inputs map[string]string) (json.RawMessage, error)
}

func (s *stubInvoker) ID() string { return "stub" }

func (s *stubInvoker) Invoke(ctx context.Context, method models.Method, inputs map[string]string) (json.RawMessage, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.respFn(ctx, method, inputs)
}

func (s *stubInvoker) respond(raw string) {
	s.respFn = func(context.Context, models.Method, map[string]string) (json.RawMessage, error) {
		return json.RawMessage(raw), nil
	}
}

type recordingPublisher struct {
	events []events.AttemptRecorded
	err    error
}

func (p *recordingPublisher) PublishAttemptRecorded(_ context.Context, e events.AttemptRecorded) error {
	p.events = append(p.events, e)
	return p.err
}

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	attempts  *store.InMemoryAttemptStore
	settings  *store.InMemoryOrgSettings
	invoker   *stubInvoker
	publisher *recordingPublisher
	lease     *inflight.LocalLease
	service   *Service
	org       id.OrgID
	candidate id.CandidateID
	now       time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.ctx = testutil.FixedTime(context.Background(), s.now)
	s.attempts = store.NewInMemoryAttemptStore()
	s.settings = store.NewInMemoryOrgSettings()
	s.invoker = &stubInvoker{}
	s.invoker.respond(`{"status_code":1}`)
	s.publisher = &recordingPublisher{}
	s.lease = inflight.NewLocalLease()
	s.org = id.OrgID(uuid.New())
	s.candidate = id.CandidateID(uuid.New())

	registry := providers.NewRegistry()
	s.Require().NoError(registry.Register(models.ProviderStandard, s.invoker))
	s.Require().NoError(registry.Register(models.ProviderGL, s.invoker))

	s.service = New(s.attempts, s.settings, registry,
		WithPublisher(s.publisher),
		WithGuard(inflight.New(inflight.WithLease(s.lease))),
		WithTracer(noop.NewTracerProvider().Tracer("service-test")),
	)
}

func (s *ServiceSuite) advance(d time.Duration) {
	s.now = s.now.Add(d)
	s.ctx = testutil.FixedTime(s.ctx, s.now)
}

func (s *ServiceSuite) TestMobileWithoutUANThenPANLookup() {
	t := s.T()

	testutil.Given(t, "a mobile lookup that finds no UAN", func(t *testing.T) {
		s.invoker.respond(`{"status_code":1007}`)
		a, err := s.service.Verify(s.ctx, s.org, s.candidate, models.MethodMobileToUAN, map[string]string{"mobile_number": " 9876543210 "})
		require.NoError(t, err)

		testutil.Then(t, "the attempt is not-found with the vendor description", func(t *testing.T) {
			assert.Equal(t, models.OutcomeNotFound, a.Outcome)
			assert.Equal(t, 1007, a.StatusCode)
			assert.Equal(t, "Provided mobile number doesn't have any UAN.", a.Reason)
		})

		testutil.Then(t, "the badge is partially verified with the reason", func(t *testing.T) {
			b, err := s.service.Badge(s.ctx, s.org, s.candidate)
			require.NoError(t, err)
			assert.Equal(t, badge.StatusPartiallyVerified, b.Status)
			assert.Equal(t, badge.ColorYellow, b.Color)
			assert.Equal(t, []string{"Provided mobile number doesn't have any UAN."}, b.Missing)
		})

		testutil.Then(t, "fetch UAN opens the submenu", func(t *testing.T) {
			v, err := s.service.Navigate(s.ctx, s.org, s.candidate, navigation.Initial(),
				navigation.Event{Kind: navigation.EventSelectCategory, Key: string(menu.CategoryFetchUAN)})
			require.NoError(t, err)
			assert.Equal(t, navigation.PanelSubmenu, v.State.Panel)
			assert.Nil(t, v.Method)
		})
	})

	testutil.When(t, "a PAN lookup then succeeds", func(t *testing.T) {
		s.advance(time.Minute)
		s.invoker.respond(`{"error":{"response":{"data":{"status_code":"1016"}}}}`)
		a, err := s.service.Verify(s.ctx, s.org, s.candidate, models.MethodPANToUAN, map[string]string{"pan": "abcde1234f"})
		require.NoError(t, err)
		assert.True(t, a.IsSuccess())

		testutil.Then(t, "the badge is verified", func(t *testing.T) {
			b, err := s.service.Badge(s.ctx, s.org, s.candidate)
			require.NoError(t, err)
			assert.Equal(t, badge.StatusVerified, b.Status)
			assert.Empty(t, b.Missing)
		})

		testutil.Then(t, "fetch UAN skips ahead to the PAN form", func(t *testing.T) {
			v, err := s.service.Navigate(s.ctx, s.org, s.candidate, navigation.Initial(),
				navigation.Event{Kind: navigation.EventSelectCategory, Key: string(menu.CategoryFetchUAN)})
			require.NoError(t, err)
			assert.Equal(t, navigation.PanelForm, v.State.Panel)
			require.NotNil(t, v.Method)
			assert.Equal(t, models.MethodPANToUAN, v.Method.Method)
		})

		testutil.Then(t, "the history is newest first", func(t *testing.T) {
			h, err := s.service.History(s.ctx, s.candidate)
			require.NoError(t, err)
			require.Len(t, h, 2)
			assert.Equal(t, models.MethodPANToUAN, h[0].Method)
		})
	})

	s.Len(s.publisher.events, 2)
	s.Equal("not_found", s.publisher.events[0].Outcome)
	s.Equal(s.org.String(), s.publisher.events[0].OrgID)
}

func (s *ServiceSuite) TestVerifyRejectsInvalidInputs() {
	_, err := s.service.Verify(s.ctx, s.org, s.candidate, models.MethodMobileToUAN, map[string]string{"mobile_number": "12345"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.Verify(s.ctx, s.org, s.candidate, models.MethodUANPassbook, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	s.Zero(s.invoker.calls)
}

func (s *ServiceSuite) TestVerifyRejectsMethodOfOtherProvider() {
	_, err := s.service.Verify(s.ctx, s.org, s.candidate, models.MethodUANFullHistoryGL, map[string]string{"uan": "100200300400"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	s.Require().NoError(s.settings.SetActiveProvider(s.ctx, s.org, models.ProviderGL))
	s.invoker.respond(`{"error":{"data":{"status_code":1001}}}`)
	a, err := s.service.Verify(s.ctx, s.org, s.candidate, models.MethodUANFullHistoryGL, map[string]string{"uan": "100200300400"})
	s.Require().NoError(err)
	s.True(a.IsSuccess())
}

func (s *ServiceSuite) TestProviderFailureIsRecordedAsError() {
	s.invoker.respFn = func(context.Context, models.Method, map[string]string) (json.RawMessage, error) {
		return nil, providers.NewProviderError(providers.ErrorTimeout, "stub", "request timed out", context.DeadlineExceeded)
	}

	a, err := s.service.Verify(s.ctx, s.org, s.candidate, models.MethodUANPassbook, map[string]string{"uan": "100200300400"})
	s.Require().NoError(err)
	s.Equal(models.OutcomeError, a.Outcome)
	s.Equal(0, a.StatusCode)
	s.Equal(classifier.ReasonNoStatusCode, a.Reason)

	h, err := s.service.History(s.ctx, s.candidate)
	s.Require().NoError(err)
	s.Len(h, 1)
}

func (s *ServiceSuite) TestOpenCircuitRecordsNothing() {
	s.invoker.respFn = func(context.Context, models.Method, map[string]string) (json.RawMessage, error) {
		return nil, providers.NewProviderError(providers.ErrorProviderOutage, "stub", "circuit open", providers.ErrCircuitOpen)
	}

	_, err := s.service.Verify(s.ctx, s.org, s.candidate, models.MethodUANPassbook, map[string]string{"uan": "100200300400"})
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	h, err := s.service.History(s.ctx, s.candidate)
	s.Require().NoError(err)
	s.Empty(h)
}

func (s *ServiceSuite) TestDuplicateOnAnotherInstanceConflicts() {
	release, err := s.lease.Acquire(s.ctx, inflight.Key{CandidateID: s.candidate, Method: models.MethodMobileToUAN})
	s.Require().NoError(err)
	defer func() { _ = release(s.ctx) }()

	_, err = s.service.Verify(s.ctx, s.org, s.candidate, models.MethodMobileToUAN, map[string]string{"mobile_number": "9876543210"})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Zero(s.invoker.calls)
}

func (s *ServiceSuite) TestLateResponseIsStillRecorded() {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the caller navigates away while the provider is still working
		cancel()
		time.Sleep(50 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status_code":1020}`))
	}))
	defer srv.Close()

	registry := providers.NewRegistry()
	s.Require().NoError(registry.Register(models.ProviderStandard,
		providers.NewHTTPInvoker("standard", srv.URL, "test-key", 5*time.Second)))
	svc := New(s.attempts, s.settings, registry, WithPublisher(s.publisher))

	a, err := svc.Verify(ctx, s.org, s.candidate, models.MethodUANLatestEmployment, map[string]string{"uan": "100200300400"})
	s.Require().NoError(err)
	s.True(a.IsSuccess())
	s.Equal(1020, a.StatusCode)

	h, err := svc.History(s.ctx, s.candidate)
	s.Require().NoError(err)
	s.Require().Len(h, 1)
	s.True(h[0].IsSuccess())
	s.Equal(1020, h[0].StatusCode)
}

func (s *ServiceSuite) TestCoalescedCallerIsNotCancelledByFirstCaller() {
	started := make(chan struct{})
	proceed := make(chan struct{})
	var once sync.Once
	s.invoker.respFn = func(ctx context.Context, _ models.Method, _ map[string]string) (json.RawMessage, error) {
		once.Do(func() { close(started) })
		<-proceed
		if err := ctx.Err(); err != nil {
			return nil, providers.NewProviderError(providers.ErrorTimeout, "stub", "request cancelled", err)
		}
		return json.RawMessage(`{"status_code":1020}`), nil
	}
	inputs := map[string]string{"uan": "100200300400"}

	first, cancelFirst := context.WithCancel(s.ctx)
	type result struct {
		attempt models.Attempt
		err     error
	}
	results := make(chan result, 2)
	go func() {
		a, err := s.service.Verify(first, s.org, s.candidate, models.MethodUANLatestEmployment, inputs)
		results <- result{a, err}
	}()
	<-started
	go func() {
		a, err := s.service.Verify(s.ctx, s.org, s.candidate, models.MethodUANLatestEmployment, inputs)
		results <- result{a, err}
	}()
	// let the second caller join the in-flight call before the first leaves
	time.Sleep(20 * time.Millisecond)
	cancelFirst()
	close(proceed)

	for range 2 {
		r := <-results
		s.Require().NoError(r.err)
		s.True(r.attempt.IsSuccess())
	}
	s.Equal(1, s.invoker.calls)
}

func (s *ServiceSuite) TestPublishFailureDoesNotFailVerify() {
	s.publisher.err = errors.New("broker down")
	a, err := s.service.Verify(s.ctx, s.org, s.candidate, models.MethodUANPassbook, map[string]string{"uan": "100200300400"})
	s.Require().NoError(err)
	s.True(a.IsSuccess())
}

func (s *ServiceSuite) TestRecordAttempt() {
	_, err := s.service.RecordAttempt(s.ctx, s.org, s.candidate, models.Method("aadhaar"), json.RawMessage(`{}`))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.RecordAttempt(s.ctx, s.org, s.candidate, models.MethodPANToUAN, json.RawMessage(`not json`))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	a, err := s.service.RecordAttempt(s.ctx, s.org, s.candidate, models.MethodPANToUAN, json.RawMessage(`{"statusCode":1008}`))
	s.Require().NoError(err)
	s.Equal(models.OutcomeNotFound, a.Outcome)
	s.Equal(s.now, a.CreatedAt)
	s.Zero(s.invoker.calls)
	s.Len(s.publisher.events, 1)
}

func (s *ServiceSuite) TestActiveProviderFallsBackToDefault() {
	p, err := s.service.ActiveProvider(s.ctx, s.org)
	s.Require().NoError(err)
	s.Equal(models.ProviderStandard, p)

	s.Require().NoError(s.settings.SetActiveProvider(s.ctx, s.org, models.Provider("acme")))
	p, err = s.service.ActiveProvider(s.ctx, s.org)
	s.Require().NoError(err)
	s.Equal(models.ProviderStandard, p)
}

func (s *ServiceSuite) TestSetActiveProvider() {
	_, err := s.service.SetActiveProvider(s.ctx, s.org, "acme")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	p, err := s.service.SetActiveProvider(s.ctx, s.org, "gl")
	s.Require().NoError(err)
	s.Equal(models.ProviderGL, p)

	cfg, err := s.service.MenuConfig(s.ctx, s.org)
	s.Require().NoError(err)
	s.Equal(models.ProviderGL, cfg.Provider)
}

func (s *ServiceSuite) TestLegacyHistoryCountsAfterProviderMigration() {
	_, err := s.service.RecordAttempt(s.ctx, s.org, s.candidate, models.MethodUANFullHistory, json.RawMessage(`{"status_code":1018}`))
	s.Require().NoError(err)
	s.Require().NoError(s.settings.SetActiveProvider(s.ctx, s.org, models.ProviderGL))

	view, err := s.service.Menu(s.ctx, s.org, s.candidate)
	s.Require().NoError(err)
	s.Equal(models.ProviderGL, view.Provider)
	for _, c := range view.Categories {
		if c.Key == menu.CategoryEmploymentHistory {
			s.True(c.Verified)
			s.Equal(models.MethodUANFullHistoryGL, c.Methods[0].Method)
		}
	}

	results, err := s.service.Results(s.ctx, s.org, s.candidate)
	s.Require().NoError(err)
	s.Equal(badge.StatusVerified, results.Badge.Status)
	for _, r := range results.Results {
		if r.Category == menu.CategoryEmploymentHistory {
			s.Require().NotNil(r.VerifiedBy)
			s.Equal(models.MethodUANFullHistory, r.VerifiedBy.Method)
			s.Require().NotNil(r.Latest)
		} else {
			s.Nil(r.VerifiedBy)
		}
	}
}

func (s *ServiceSuite) TestBadgeSurvivesSwitchBackToStandardProvider() {
	s.Require().NoError(s.settings.SetActiveProvider(s.ctx, s.org, models.ProviderGL))
	s.invoker.respond(`{"status_code":1000}`)
	a, err := s.service.Verify(s.ctx, s.org, s.candidate, models.MethodUANFullHistoryGL, map[string]string{"uan": "100200300400"})
	s.Require().NoError(err)
	s.Require().True(a.IsSuccess())

	_, err = s.service.SetActiveProvider(s.ctx, s.org, "standard")
	s.Require().NoError(err)

	b, err := s.service.Badge(s.ctx, s.org, s.candidate)
	s.Require().NoError(err)
	s.Equal(badge.StatusVerified, b.Status)
	s.Empty(b.Missing)

	results, err := s.service.Results(s.ctx, s.org, s.candidate)
	s.Require().NoError(err)
	s.Equal(badge.StatusVerified, results.Badge.Status)
}

func (s *ServiceSuite) TestNavigateRejectsUnknownKeys() {
	_, err := s.service.Navigate(s.ctx, s.org, s.candidate, navigation.Initial(),
		navigation.Event{Kind: navigation.EventSelectCategory, Key: "reports"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.Navigate(s.ctx, s.org, s.candidate,
		navigation.State{Panel: navigation.PanelForm, Category: menu.CategoryFetchUAN, MethodKey: "aadhaar"},
		navigation.Event{Kind: navigation.EventBack})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
