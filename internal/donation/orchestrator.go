package donation

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ethpkg/donate/internal/chain"
	"github.com/ethpkg/donate/internal/metrics"
	"github.com/ethpkg/donate/internal/provider"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// Session holds the provider resolved for the host environment together
// with the donation settings. The provider is resolved once, in NewSession;
// later account or network changes are seen by re-querying it.
type Session struct {
	provider   provider.Provider
	resolveErr error
	settings   Settings
	log        Logger
}

// NewSession resolves the provider from env. A missing provider is not an
// error here; it is reported by the first donation attempt.
func NewSession(env provider.Environment, settings Settings, log Logger) *Session {
	p, err := provider.Resolve(env)
	return &Session{
		provider:   p,
		resolveErr: err,
		settings:   settings,
		log:        loggerOrNop(log),
	}
}

// Provider returns the resolved provider or ErrNoProvider.
func (s *Session) Provider() (provider.Provider, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.provider, nil
}

// Settings returns the session settings.
func (s *Session) Settings() Settings {
	return s.settings
}

// IsAllowedAmount reports whether usd is one of the allowed amounts.
func (s *Session) IsAllowedAmount(usd decimal.Decimal) bool {
	for _, a := range s.settings.AllowedAmounts {
		if a.Equal(usd) {
			return true
		}
	}
	return false
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStageObserver registers fn to be called on every stage transition.
func WithStageObserver(fn func(Stage)) Option {
	return func(o *Orchestrator) {
		o.onStage = fn
	}
}

// Orchestrator runs donation attempts against a Session.
//
// Donate does not guard against concurrent use. Callers must not start a
// new attempt while one is in flight; the CLI enforces this with a
// process-wide guard.
type Orchestrator struct {
	session *Session
	onStage func(Stage)
}

// NewOrchestrator creates an orchestrator for s.
func NewOrchestrator(s *Session, opts ...Option) *Orchestrator {
	o := &Orchestrator{session: s}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Donate runs one attempt: resolve the provider, acquire accounts, check
// the network, compute the payment, submit and classify. Every failure is
// returned as an Outcome; Donate never returns nil.
func (o *Orchestrator) Donate(ctx context.Context, req DonationRequest) *Outcome {
	s := o.session
	o.enter(StageIdle)

	if err := chain.ValidateRecipient(req.RecipientAddress); err != nil {
		return o.finish(Failed(StageIdle, err))
	}
	if !s.IsAllowedAmount(req.USDAmount) {
		return o.finish(Failed(StageIdle, donateerr.WithDetails(donateerr.ErrInvalidAmount, map[string]string{
			"usd": req.USDAmount.String(),
		})))
	}

	o.enter(StageResolvingProvider)
	p, err := s.Provider()
	if err != nil {
		return o.finish(Failed(StageResolvingProvider, err))
	}
	s.log.Debug("using %s provider", p.Kind())

	o.enter(StageAcquiringAccounts)
	accounts, err := GetAccounts(ctx, p, s.log)
	if err != nil {
		if donateerr.Is(err, donateerr.ErrAccessDenied) {
			return o.finish(Rejected(StageAcquiringAccounts, err))
		}
		return o.finish(Failed(StageAcquiringAccounts, err))
	}
	from := accounts[0]

	o.enter(StageCheckingNetwork)
	if err := o.checkNetwork(ctx, p); err != nil {
		return o.finish(Failed(StageCheckingNetwork, err))
	}

	o.enter(StageComputingPayment)
	payment, err := ComputeNativeValue(req.USDAmount, req.QuotedUSDPerNative, s.settings.Limits)
	if err != nil {
		return o.finish(Failed(StageComputingPayment, err))
	}
	s.log.Debug("donating %s USD = %s ETH (%s wei) to %s", req.USDAmount, payment.Native, payment.ValueHex, req.RecipientAddress)

	o.enter(StageSubmitting)
	if err := o.checkBalance(ctx, p, from, payment); err != nil {
		return o.finish(Failed(StageSubmitting, err))
	}

	resp, err := Submit(ctx, p, PendingTransaction{
		From:  from,
		To:    req.RecipientAddress,
		Value: payment.ValueHex,
	})
	if err != nil {
		return o.finish(Failed(StageSubmitting, err))
	}

	return o.finish(Classify(resp))
}

// checkNetwork reads the network id under its own deadline so a silent
// wallet cannot use up the caller's context before submission.
func (o *Orchestrator) checkNetwork(ctx context.Context, p provider.Provider) error {
	timeout := o.session.settings.NetworkCheckTimeout
	if timeout <= 0 {
		timeout = DefaultNetworkCheckTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return CheckNetwork(ctx, p, o.session.settings.Network)
}

func (o *Orchestrator) checkBalance(ctx context.Context, p provider.Provider, from string, payment *Payment) error {
	s := o.session
	if timeout := s.settings.BalanceCheckTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return CheckBalance(ctx, p, from, payment, s.settings.Network, s.log)
}

func (o *Orchestrator) enter(stage Stage) {
	if o.onStage != nil {
		o.onStage(stage)
	}
}

func (o *Orchestrator) finish(out *Outcome) *Outcome {
	o.enter(StageClassified)

	metrics.Global.RecordDonation(string(out.Status))
	switch out.Status {
	case StatusSubmitted:
		o.session.log.Debug("donation submitted: %s", out.TxHash)
	case StatusRejected, StatusFailed:
		metrics.Global.RecordStageFailure(string(out.Stage))
		o.session.log.Error("donation %s at %s: %v", out.Status, out.Stage, out.Err)
	}
	return out
}

