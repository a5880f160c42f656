// Package accountflow registers accounts, checks credentials and manages
// customer profiles.
package accountflow

import (
	"context"

	"github.com/example/ec-fulfillment/internal/apperr"
	"github.com/example/ec-fulfillment/internal/domain/account"
	"github.com/example/ec-fulfillment/internal/domain/factory"
	"github.com/example/ec-fulfillment/internal/domain/profile"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/workflow"
)

// PasswordHasher is satisfied by auth.BcryptHasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(password, hash string) bool
}

type Deps struct {
	Accounts account.Repository
	Profiles profile.Repository
	Hasher   PasswordHasher
	Factory  *factory.Factory
}

// =============================================================================
// RegisterAccount
// =============================================================================

type RegisterInput struct {
	Email    string
	Password string
	// Role defaults to customer.
	Role string
}

type registerParsed struct {
	in    RegisterInput
	email shared.Email
}

type registerValidated struct {
	registerParsed
	hash string
}

type RegisterAccount struct {
	deps Deps
	run  workflow.Step[RegisterInput, workflow.Result[account.Account]]
}

func NewRegisterAccount(d Deps) *RegisterAccount {
	w := &RegisterAccount{deps: d}
	w.run = workflow.Chain4(w.parse, w.validate, w.mutate, w.persist)
	return w
}

func (w *RegisterAccount) Execute(ctx context.Context, in RegisterInput) (workflow.Result[account.Account], error) {
	return w.run(ctx, in)
}

func (w *RegisterAccount) parse(_ context.Context, in RegisterInput) (registerParsed, error) {
	email, err := shared.NewEmail(in.Email)
	if err != nil {
		return registerParsed{}, workflow.Rule(err)
	}
	return registerParsed{in: in, email: email}, nil
}

func (w *RegisterAccount) validate(ctx context.Context, p registerParsed) (registerValidated, error) {
	_, taken, err := w.deps.Accounts.FindByEmail(ctx, p.email)
	if err != nil {
		return registerValidated{}, err
	}
	if taken {
		return registerValidated{}, apperr.Conflict(account.ErrEmailTaken)
	}
	hash, err := w.deps.Hasher.Hash(p.in.Password)
	if err != nil {
		return registerValidated{}, workflow.Rule(err)
	}
	return registerValidated{registerParsed: p, hash: hash}, nil
}

func (w *RegisterAccount) mutate(_ context.Context, v registerValidated) (account.Account, error) {
	role := shared.FirstNonBlank(v.in.Role, account.RoleCustomer)
	a, err := w.deps.Factory.NewAccount(v.email, v.hash, role)
	return a, workflow.Rule(err)
}

func (w *RegisterAccount) persist(ctx context.Context, a account.Account) (workflow.Result[account.Account], error) {
	return workflow.Persist(ctx, w.deps.Accounts.Save, a)
}

// =============================================================================
// AuthenticateAccount
// =============================================================================

type Credentials struct {
	Email    string
	Password string
}

type AuthenticateAccount struct {
	deps Deps
	run  workflow.Step[Credentials, workflow.Result[account.Account]]
}

func NewAuthenticateAccount(d Deps) *AuthenticateAccount {
	w := &AuthenticateAccount{deps: d}
	w.run = workflow.Chain3(w.find, w.mutate, w.persist)
	return w
}

// Execute checks the credentials and records the login. An unknown email and
// a wrong password fail the same way.
func (w *AuthenticateAccount) Execute(ctx context.Context, in Credentials) (workflow.Result[account.Account], error) {
	return w.run(ctx, in)
}

func (w *AuthenticateAccount) find(ctx context.Context, in Credentials) (account.Account, error) {
	email, err := shared.NewEmail(in.Email)
	if err != nil {
		return account.Account{}, workflow.Rule(account.ErrInvalidCredentials)
	}
	a, ok, err := w.deps.Accounts.FindByEmail(ctx, email)
	if err != nil {
		return account.Account{}, err
	}
	if !ok || !w.deps.Hasher.Matches(in.Password, a.PasswordHash()) {
		return account.Account{}, workflow.Rule(account.ErrInvalidCredentials)
	}
	return a, nil
}

func (w *AuthenticateAccount) mutate(_ context.Context, a account.Account) (account.Account, error) {
	a, err := a.RecordLogin(w.deps.Factory.Now())
	if err != nil {
		return account.Account{}, apperr.Forbidden(err)
	}
	return a, nil
}

func (w *AuthenticateAccount) persist(ctx context.Context, a account.Account) (workflow.Result[account.Account], error) {
	return workflow.Persist(ctx, w.deps.Accounts.Save, a)
}

// =============================================================================
// CreateUserProfile
// =============================================================================

type CreateProfileInput struct {
	AccountID shared.AccountID
	Name      string
	Phone     string
}

type profileFound struct {
	in      CreateProfileInput
	account account.Account
}

type CreateUserProfile struct {
	deps Deps
	run  workflow.Step[CreateProfileInput, workflow.Result[profile.Profile]]
}

func NewCreateUserProfile(d Deps) *CreateUserProfile {
	w := &CreateUserProfile{deps: d}
	w.run = workflow.Chain4(w.find, w.validate, w.mutate, w.persist)
	return w
}

// Execute creates the account's profile with the account's email.
func (w *CreateUserProfile) Execute(ctx context.Context, in CreateProfileInput) (workflow.Result[profile.Profile], error) {
	return w.run(ctx, in)
}

func (w *CreateUserProfile) find(ctx context.Context, in CreateProfileInput) (profileFound, error) {
	a, ok, err := w.deps.Accounts.FindByID(ctx, in.AccountID)
	a, err = workflow.Found(a, ok, err, account.ErrAccountNotFound)
	if err != nil {
		return profileFound{}, err
	}
	return profileFound{in: in, account: a}, nil
}

func (w *CreateUserProfile) validate(ctx context.Context, f profileFound) (profileFound, error) {
	_, exists, err := w.deps.Profiles.FindByAccount(ctx, f.account.ID())
	if err != nil {
		return profileFound{}, err
	}
	if exists {
		return profileFound{}, apperr.Conflict(profile.ErrProfileExists)
	}
	return f, nil
}

func (w *CreateUserProfile) mutate(_ context.Context, f profileFound) (profile.Profile, error) {
	p, err := w.deps.Factory.NewProfile(f.account.ID(), f.in.Name, f.account.Email(), f.in.Phone)
	return p, workflow.Rule(err)
}

func (w *CreateUserProfile) persist(ctx context.Context, p profile.Profile) (workflow.Result[profile.Profile], error) {
	return workflow.Persist(ctx, w.deps.Profiles.Save, p)
}

// =============================================================================
// AddAddress / SetDefaultAddress
// =============================================================================

type AddressInput struct {
	Actor       workflow.Actor
	Label       string
	Recipient   string
	Line1       string
	Line2       string
	City        string
	PostalCode  string
	Country     string
	MakeDefault bool
}

type addressFound struct {
	in      AddressInput
	profile profile.Profile
}

func loadProfile(ctx context.Context, repo profile.Repository, actor workflow.Actor) (profile.Profile, error) {
	p, ok, err := repo.FindByAccount(ctx, actor.AccountID)
	p, err = workflow.Found(p, ok, err, profile.ErrProfileNotFound)
	if err != nil {
		return profile.Profile{}, err
	}
	if err := workflow.Authorize(actor, p); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

type AddAddress struct {
	deps Deps
	run  workflow.Step[AddressInput, workflow.Result[profile.Profile]]
}

func NewAddAddress(d Deps) *AddAddress {
	w := &AddAddress{deps: d}
	w.run = workflow.Chain3(w.find, w.mutate, w.persist)
	return w
}

// Execute adds an address to the actor's profile. The first address becomes
// the default.
func (w *AddAddress) Execute(ctx context.Context, in AddressInput) (workflow.Result[profile.Profile], error) {
	return w.run(ctx, in)
}

func (w *AddAddress) find(ctx context.Context, in AddressInput) (addressFound, error) {
	p, err := loadProfile(ctx, w.deps.Profiles, in.Actor)
	if err != nil {
		return addressFound{}, err
	}
	return addressFound{in: in, profile: p}, nil
}

func (w *AddAddress) mutate(_ context.Context, f addressFound) (profile.Profile, error) {
	p, err := f.profile.AddAddress(profile.Address{
		ID:         w.deps.Factory.NewAddressID(),
		Label:      f.in.Label,
		Recipient:  f.in.Recipient,
		Line1:      f.in.Line1,
		Line2:      f.in.Line2,
		City:       f.in.City,
		PostalCode: f.in.PostalCode,
		Country:    f.in.Country,
		IsDefault:  f.in.MakeDefault,
	}, w.deps.Factory.Now())
	return p, workflow.Rule(err)
}

func (w *AddAddress) persist(ctx context.Context, p profile.Profile) (workflow.Result[profile.Profile], error) {
	return workflow.Persist(ctx, w.deps.Profiles.Save, p)
}

type DefaultAddressInput struct {
	Actor     workflow.Actor
	AddressID shared.AddressID
}

type defaultFound struct {
	in      DefaultAddressInput
	profile profile.Profile
}

type SetDefaultAddress struct {
	deps Deps
	run  workflow.Step[DefaultAddressInput, workflow.Result[profile.Profile]]
}

func NewSetDefaultAddress(d Deps) *SetDefaultAddress {
	w := &SetDefaultAddress{deps: d}
	w.run = workflow.Chain3(w.find, w.mutate, w.persist)
	return w
}

func (w *SetDefaultAddress) Execute(ctx context.Context, in DefaultAddressInput) (workflow.Result[profile.Profile], error) {
	return w.run(ctx, in)
}

func (w *SetDefaultAddress) find(ctx context.Context, in DefaultAddressInput) (defaultFound, error) {
	p, err := loadProfile(ctx, w.deps.Profiles, in.Actor)
	if err != nil {
		return defaultFound{}, err
	}
	return defaultFound{in: in, profile: p}, nil
}

func (w *SetDefaultAddress) mutate(_ context.Context, f defaultFound) (profile.Profile, error) {
	p, err := f.profile.SetDefaultAddress(f.in.AddressID, w.deps.Factory.Now())
	if err != nil {
		return profile.Profile{}, apperr.NotFound(err)
	}
	return p, nil
}

func (w *SetDefaultAddress) persist(ctx context.Context, p profile.Profile) (workflow.Result[profile.Profile], error) {
	return workflow.Persist(ctx, w.deps.Profiles.Save, p)
}
