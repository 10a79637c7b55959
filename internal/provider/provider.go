// Package provider defines the abstraction shared by the market and filing
// data sources: a Provider interface, the kinds of data a provider can
// serve, and a registry that routes each kind to a provider.
package provider

import (
	"context"
	"fmt"
)

// Kind names a category of upstream data.
type Kind string

const (
	KindFacts   Kind = "facts"   // XBRL company facts
	KindProfile Kind = "profile" // company name, industry, country
	KindQuote   Kind = "quote"   // share price and trading currency
	KindFX      Kind = "fx"      // currency conversion rates
	KindYield   Kind = "yield"   // long-term government bond yields
	KindFilings Kind = "filings" // recent filing feed
)

// Credential describes a credential a provider accepts.
type Credential struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"`
}

// Info holds metadata about a provider.
type Info struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Website     string       `json:"website"`
	Credentials []Credential `json:"credentials,omitempty"`
	Kinds       []Kind       `json:"kinds"`
}

// Provider is implemented by every upstream data source.
type Provider interface {
	// Info returns metadata about this provider.
	Info() Info

	// Init stores credentials. Returns an error if a required one is missing.
	Init(credentials map[string]string) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error
}

// ErrProviderNotFound is returned when a requested provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrInvalidCredentials is returned when provider credentials are invalid.
type ErrInvalidCredentials struct {
	Provider string
	Detail   string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("invalid credentials for provider %q: %s", e.Provider, e.Detail)
}
