package pipeline

import (
	"context"
	"strings"

	"verifier/pkg/domain"
	"verifier/pkg/logger"
	"verifier/pkg/mx"

	"go.uber.org/zap"
)

// MailExchangeChecker resolves whether a domain accepts mail.
//
//go:generate mockgen -package mockpipeline -source=classifier.go -destination=mock/mockpipeline.go
type MailExchangeChecker interface {
	Lookup(ctx context.Context, domain string) mx.Reachability
}

// AddressClassifier assigns a disposition to one email address.
type AddressClassifier interface {
	Classify(ctx context.Context, address string) domain.Disposition
}

// SuffixPolicy decides the disposition of an address whose domain is known to
// accept mail. It stands in for mailbox-level verification.
type SuffixPolicy func(domain string) domain.Disposition

// DefaultSuffixPolicy treats ".com" domains as deliverable, ".org" domains as
// catch-all and everything else as undeliverable.
func DefaultSuffixPolicy(d string) domain.Disposition {
	switch {
	case strings.HasSuffix(d, ".com"):
		return domain.DispositionValid
	case strings.HasSuffix(d, ".org"):
		return domain.DispositionCatchAll
	default:
		return domain.DispositionInvalid
	}
}

// Classifier is the AddressClassifier combining syntax, MX reachability and a
// suffix policy.
type Classifier struct {
	checker MailExchangeChecker
	policy  SuffixPolicy
}

// NewClassifier creates a Classifier. A nil policy uses DefaultSuffixPolicy.
func NewClassifier(checker MailExchangeChecker, policy SuffixPolicy) *Classifier {
	if policy == nil {
		policy = DefaultSuffixPolicy
	}

	return &Classifier{checker: checker, policy: policy}
}

// Classify returns the disposition of address. Malformed addresses are
// rejected without touching the network. Domains without mail exchangers are
// invalid; an indeterminate lookup is treated the same way.
func (c *Classifier) Classify(ctx context.Context, address string) domain.Disposition {
	if !IsSyntacticallyValid(address) {
		return domain.DispositionInvalid
	}

	_, host, _ := strings.Cut(address, "@")
	reach := c.checker.Lookup(ctx, host)
	if reach != mx.Reachable {
		if reach == mx.Indeterminate {
			logger.Debug(ctx, "mx lookup indeterminate, treating as invalid", zap.String("domain", host))
		}

		return domain.DispositionInvalid
	}

	return c.policy(host)
}
