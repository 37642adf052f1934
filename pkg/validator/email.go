package validator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/miekg/dns"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var (
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrEmailLookup means the MX lookup itself failed, not that the domain is bad.
	ErrEmailLookup = errors.New("email domain lookup failed")
)

// MXResolver reports whether a domain accepts mail.
type MXResolver interface {
	HasMX(ctx context.Context, domain string) (bool, error)
}

// DNSResolver queries MX records with a plain DNS client.
type DNSResolver struct {
	client *dns.Client
	server string
}

// NewDNSResolver creates a resolver for server ("host:port"). An empty server
// uses the first nameserver of /etc/resolv.conf.
func NewDNSResolver(server string, timeout time.Duration) (*DNSResolver, error) {
	if server == "" {
		conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
		if err != nil || len(conf.Servers) == 0 {
			return nil, fmt.Errorf("no dns resolver configured: %v", err)
		}
		server = net.JoinHostPort(conf.Servers[0], conf.Port)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DNSResolver{client: &dns.Client{Timeout: timeout}, server: server}, nil
}

func (r *DNSResolver) HasMX(ctx context.Context, domain string) (bool, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), dns.TypeMX)
	m.RecursionDesired = true

	in, _, err := r.client.ExchangeContext(ctx, m, r.server)
	if err != nil {
		return false, err
	}
	switch in.Rcode {
	case dns.RcodeSuccess:
		for _, rr := range in.Answer {
			if _, ok := rr.(*dns.MX); ok {
				return true, nil
			}
		}
		return false, nil
	case dns.RcodeNameError:
		return false, nil
	default:
		return false, fmt.Errorf("dns answered %s", dns.RcodeToString[in.Rcode])
	}
}

// EmailValidator checks syntax and, with a resolver, the MX record of the domain.
type EmailValidator struct {
	resolver MXResolver
}

// NewEmailValidator creates a validator. A nil resolver checks syntax only.
func NewEmailValidator(resolver MXResolver) *EmailValidator {
	return &EmailValidator{resolver: resolver}
}

// ValidFormat reports whether email is syntactically acceptable.
func ValidFormat(email string) bool {
	return emailRegexp.MatchString(email)
}

// Validate returns ErrInvalidEmail for bad addresses and ErrEmailLookup when
// the domain could not be checked.
func (v *EmailValidator) Validate(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !ValidFormat(email) {
		return ErrInvalidEmail
	}
	if v.resolver == nil {
		return nil
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	ok, err := v.resolver.HasMX(ctx, domain)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEmailLookup, domain, err)
	}
	if !ok {
		return ErrInvalidEmail
	}
	return nil
}
