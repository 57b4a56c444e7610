package provision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/imobipro/imobipro-api/app/models"
	"github.com/imobipro/imobipro-api/app/repository"
	"github.com/imobipro/imobipro-api/internal/pkg/mail"
	"github.com/imobipro/imobipro-api/internal/pkg/mercadopago"
	"github.com/imobipro/imobipro-api/internal/pkg/shortener"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const fallbackPlano = "pro"

// Gateway is the slice of the Mercado Pago client the service depends on.
type Gateway interface {
	CreatePayment(ctx context.Context, in mercadopago.CreatePaymentRequest) (*mercadopago.Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*mercadopago.Payment, error)
}

// Mailer sends the one-shot credential email.
type Mailer interface {
	SendWelcomeEmail(in mail.WelcomeEmail) error
}

// Config carries the provisioning settings validated at construction time.
type Config struct {
	// LoginURL is the address printed in the welcome email.
	LoginURL string
	// SiteBaseDomain is the apex under which corretor sites live,
	// e.g. "imobi-pro.com" for https://<slug>.imobi-pro.com.
	SiteBaseDomain string
}

// Service owns the payment intent and webhook reconciliation flows. All
// collaborators are injected; construction fails fast on a missing one.
type Service struct {
	gateway Gateway
	repos   *repository.Repositories
	mailer  Mailer
	cfg     Config
}

func NewService(gateway Gateway, repos *repository.Repositories, mailer Mailer, cfg Config) (*Service, error) {
	if gateway == nil {
		return nil, errors.New("provision: gateway is required")
	}
	if repos == nil {
		return nil, errors.New("provision: repositories are required")
	}
	if mailer == nil {
		return nil, errors.New("provision: mailer is required")
	}
	if strings.TrimSpace(cfg.LoginURL) == "" {
		return nil, errors.New("provision: login URL is required")
	}
	if strings.TrimSpace(cfg.SiteBaseDomain) == "" {
		return nil, errors.New("provision: site base domain is required")
	}
	return &Service{gateway: gateway, repos: repos, mailer: mailer, cfg: cfg}, nil
}

// IntentInput is a validated payment submission.
type IntentInput struct {
	Token           string
	PaymentMethodID string
	IssuerID        string
	Installments    int
	Plano           string
	Amount          decimal.Decimal
	PayerEmail      string
	PayerNome       string
	SignupRaw       string
}

// IntentResult echoes the gateway's immediate answer back to the client.
type IntentResult struct {
	MPPaymentID  string
	Status       string
	StatusDetail string
}

// CreateIntent forwards a normalized charge to the gateway and records the
// pending ledger row. The gateway may answer with a terminal status right
// away; it is stored as-is, but provisioning still waits for the webhook
// path so exactly one code path creates tenants.
func (s *Service) CreateIntent(ctx context.Context, in IntentInput) (*IntentResult, error) {
	req := mercadopago.CreatePaymentRequest{
		Token:             in.Token,
		TransactionAmount: in.Amount.InexactFloat64(),
		Installments:      in.Installments,
		PaymentMethodID:   in.PaymentMethodID,
		IssuerID:          in.IssuerID,
		Description:       fmt.Sprintf("ImobiPro • Plano %s", in.Plano),
	}
	req.Payer.Email = in.PayerEmail

	p, err := s.gateway.CreatePayment(ctx, req)
	if err != nil {
		return nil, err
	}

	status := p.Status
	if status == "" {
		status = models.PaymentStatusPending
	}

	payment := &models.Payment{
		MPPaymentID: p.PaymentID(),
		UserEmail:   in.PayerEmail,
		Plano:       in.Plano,
		Status:      status,
		Valor:       in.Amount,
		Raw:         p.RawJSON,
		SignupRaw:   in.SignupRaw,
	}
	if err := s.repos.Payment.Create(payment); err != nil {
		return nil, err
	}

	return &IntentResult{
		MPPaymentID:  p.PaymentID(),
		Status:       status,
		StatusDetail: p.StatusDetail,
	}, nil
}

// Outcome names the terminal branch a reconciliation run took.
type Outcome string

const (
	OutcomeIgnored            Outcome = "ignored"
	OutcomeNotFound           Outcome = "not_found"
	OutcomeNotApproved        Outcome = "not_approved"
	OutcomeAlreadyProvisioned Outcome = "already_provisioned"
	OutcomeProvisioned        Outcome = "provisioned"
)

// ReconcileResult summarizes a reconciliation run for the acknowledgment body.
type ReconcileResult struct {
	Outcome    Outcome
	Status     string
	CorretorID uint
	SiteURL    string
}

// signupPayload is the subset of the signup form the provisioning steps
// read; everything else in the payload stays opaque.
type signupPayload struct {
	Nome     string `json:"nome"`
	Telefone string `json:"telefone"`
}

// Reconcile drives the webhook state machine: re-fetch the payment from the
// gateway, bring the ledger up to date, and run the provisioning saga only
// for a newly approved payment. Each saga step is resumable: a rerun
// after a partial failure picks up the missing rows instead of duplicating
// the finished ones.
func (s *Service) Reconcile(ctx context.Context, paymentID string) (*ReconcileResult, error) {
	id := strings.TrimSpace(paymentID)
	if id == "" {
		return &ReconcileResult{Outcome: OutcomeIgnored}, nil
	}

	p, err := s.gateway.GetPayment(ctx, id)
	if errors.Is(err, mercadopago.ErrPaymentNotFound) {
		return &ReconcileResult{Outcome: OutcomeNotFound}, nil
	}
	if err != nil {
		return nil, err
	}

	// The ledger mirrors gateway truth on every delivery, approved or not.
	if err := s.repos.Payment.UpdateStatusByMPPaymentID(id, p.Status, p.RawJSON); err != nil {
		return nil, err
	}
	ledger, err := s.repos.Payment.GetByMPPaymentID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Webhook for a payment this service never saw an intent for
		// (manual charge, lost insert). Record it so the ledger stays
		// complete.
		ledger = &models.Payment{
			MPPaymentID: id,
			UserEmail:   p.Payer.Email,
			Status:      p.Status,
			Valor:       decimal.NewFromFloat(p.TransactionAmount),
			Raw:         p.RawJSON,
		}
		if err := s.repos.Payment.Create(ledger); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if p.Status != mercadopago.StatusApproved {
		return &ReconcileResult{Outcome: OutcomeNotApproved, Status: p.Status}, nil
	}

	payerEmail := strings.TrimSpace(p.Payer.Email)
	if payerEmail == "" {
		return nil, fmt.Errorf("approved payment %s has no payer email", id)
	}

	// Idempotency: one corretor per payer email. A repeat delivery never
	// recreates the profile or resends credentials, but it still finishes
	// whatever a previous partial run left undone.
	existing, err := s.repos.Corretor.GetByEmail(payerEmail)
	if err == nil {
		return s.resume(ledger, existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.provision(ledger, p, payerEmail)
}

// provision runs the saga for a payer without a corretor profile yet:
// identity, profile, workspace, site, credential email, provisioned flag,
// in that order.
func (s *Service) provision(ledger *models.Payment, p *mercadopago.Payment, payerEmail string) (*ReconcileResult, error) {
	var signup signupPayload
	if ledger.SignupRaw != "" {
		// Opaque payload captured at intent time; ignore anything that
		// does not parse.
		_ = json.Unmarshal([]byte(ledger.SignupRaw), &signup)
	}

	nome := strings.TrimSpace(signup.Nome)
	if nome == "" {
		nome = strings.TrimSpace(p.AdditionalInfo.Payer.FirstName)
	}
	displayName := nome
	if displayName == "" {
		displayName = "Corretor"
	}

	plano := ledger.Plano
	if plano == "" {
		plano = fallbackPlano
	}

	senha, err := shortener.RandomPassword()
	if err != nil {
		return nil, err
	}

	user, err := s.ensureIdentity(displayName, payerEmail, senha)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar usuário: %w", err)
	}

	slug, err := shortener.MakeSlug(nome, payerEmail)
	if err != nil {
		return nil, err
	}
	dominio := fmt.Sprintf("%s.%s", slug, s.cfg.SiteBaseDomain)

	corretor := &models.Corretor{
		UserID:    user.ID,
		Nome:      displayName,
		Email:     payerEmail,
		Telefone:  signup.Telefone,
		Plano:     plano,
		Status:    models.CorretorStatusAtivo,
		Slug:      slug,
		SiteURL:   "https://" + dominio,
		SignupRaw: ledger.SignupRaw,
	}
	if err := s.repos.Corretor.Create(corretor); err != nil {
		// A concurrent delivery may have won the unique-email race; the
		// loser resumes on the winner's profile instead of failing.
		if winner, lookupErr := s.repos.Corretor.GetByEmail(payerEmail); lookupErr == nil {
			return s.resume(ledger, winner)
		}
		return nil, fmt.Errorf("erro ao inserir corretor: %w", err)
	}

	if err := s.ensureWorkspace(corretor, plano); err != nil {
		return nil, fmt.Errorf("erro ao criar workspace: %w", err)
	}

	if err := s.ensureSite(corretor, dominio); err != nil {
		return nil, fmt.Errorf("erro ao criar site: %w", err)
	}

	if err := s.mailer.SendWelcomeEmail(mail.WelcomeEmail{
		To:       payerEmail,
		Nome:     corretor.Nome,
		Email:    payerEmail,
		Senha:    senha,
		LoginURL: s.cfg.LoginURL,
	}); err != nil {
		return nil, err
	}

	if err := s.repos.Payment.MarkProvisioned(ledger.MPPaymentID, corretor.ID); err != nil {
		return nil, err
	}

	return &ReconcileResult{
		Outcome:    OutcomeProvisioned,
		Status:     models.PaymentStatusApproved,
		CorretorID: corretor.ID,
		SiteURL:    corretor.SiteURL,
	}, nil
}

// ensureIdentity creates the login user, or rotates the password when the
// user already exists from a run that failed between identity and profile
// creation. Rotating keeps the welcome email valid: the account has never
// been logged into at this point.
func (s *Service) ensureIdentity(name, email, senha string) (*models.User, error) {
	user, err := s.repos.User.GetByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = models.CreateUser(name, email, senha)
		if err != nil {
			return nil, err
		}
		if err := s.repos.User.Create(user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if err != nil {
		return nil, err
	}

	hash, err := models.HashPassword(senha)
	if err != nil {
		return nil, err
	}
	if err := s.repos.User.UpdatePassword(user.ID, hash); err != nil {
		return nil, err
	}
	return user, nil
}

// ensureWorkspace makes sure the corretor's single CRM workspace row
// exists. An insert that loses the unique-index race on corretor_id to a
// concurrent delivery counts as existing, not as a failure.
func (s *Service) ensureWorkspace(corretor *models.Corretor, plano string) error {
	_, err := s.repos.Workspace.GetByCorretorID(corretor.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	createErr := s.repos.Workspace.Create(&models.CRMWorkspace{
		CorretorID: corretor.ID,
		Nome:       fmt.Sprintf("CRM • %s", corretor.Nome),
		Plano:      plano,
	})
	if createErr == nil {
		return nil
	}
	if _, err := s.repos.Workspace.GetByCorretorID(corretor.ID); err == nil {
		return nil
	}
	return createErr
}

// ensureSite mirrors ensureWorkspace for the site registration row.
func (s *Service) ensureSite(corretor *models.Corretor, dominio string) error {
	_, err := s.repos.Site.GetByCorretorID(corretor.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	createErr := s.repos.Site.Create(&models.Site{
		CorretorID: corretor.ID,
		Dominio:    dominio,
		Ativo:      true,
	})
	if createErr == nil {
		return nil
	}
	if _, err := s.repos.Site.GetByCorretorID(corretor.ID); err == nil {
		return nil
	}
	return createErr
}

// resume finishes an interrupted provisioning run for an existing corretor:
// missing workspace or site rows are created, the ledger row is marked
// provisioned if it never was, and no second credential email goes out.
func (s *Service) resume(ledger *models.Payment, corretor *models.Corretor) (*ReconcileResult, error) {
	plano := corretor.Plano
	if plano == "" {
		plano = fallbackPlano
	}

	if err := s.ensureWorkspace(corretor, plano); err != nil {
		return nil, err
	}

	if err := s.ensureSite(corretor, strings.TrimPrefix(corretor.SiteURL, "https://")); err != nil {
		return nil, err
	}

	if ledger.NeedsProvisioning() {
		if err := s.repos.Payment.MarkProvisioned(ledger.MPPaymentID, corretor.ID); err != nil {
			return nil, err
		}
	}

	return &ReconcileResult{
		Outcome:    OutcomeAlreadyProvisioned,
		Status:     ledger.Status,
		CorretorID: corretor.ID,
		SiteURL:    corretor.SiteURL,
	}, nil
}
