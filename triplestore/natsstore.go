package triplestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/EMMC-ASBL/tripper-sub000/errors"
	"github.com/EMMC-ASBL/tripper-sub000/mapping"
	"github.com/EMMC-ASBL/tripper-sub000/pkg/retry"
)

const (
	// DefaultSubjectPrefix is the subject prefix for fact requests.
	DefaultSubjectPrefix = "mapping.facts"

	// DefaultRequestTimeout bounds a single fact request.
	DefaultRequestTimeout = 2 * time.Second

	equivalencesSubject    = "equivalences"
	transformationsSubject = "transformations"
)

// RequestFunc issues one request/reply exchange. The default uses a
// *nats.Conn; tests inject their own.
type RequestFunc func(ctx context.Context, subject string, data []byte) ([]byte, error)

// NATSStore fetches mapping facts from a remote knowledge-base service
// over NATS request/reply. Transient failures are retried with
// exponential backoff; malformed replies are invalid-class errors and
// are not retried.
type NATSStore struct {
	request       RequestFunc
	subjectPrefix string
	timeout       time.Duration

	// policy decides WHICH failures are worth retrying; retryCfg
	// shapes HOW the retries are paced. Both default from
	// errors.DefaultRetryConfig.
	policy   errors.RetryConfig
	retryCfg retry.Config
}

// NATSStoreOption configures a NATSStore
type NATSStoreOption func(*NATSStore)

// WithSubjectPrefix overrides the request subject prefix
func WithSubjectPrefix(prefix string) NATSStoreOption {
	return func(s *NATSStore) {
		if prefix != "" {
			s.subjectPrefix = prefix
		}
	}
}

// WithRequestTimeout bounds each individual fact request
func WithRequestTimeout(timeout time.Duration) NATSStoreOption {
	return func(s *NATSStore) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithRetryConfig overrides the retry pacing (attempts, delays)
func WithRetryConfig(cfg retry.Config) NATSStoreOption {
	return func(s *NATSStore) {
		s.retryCfg = cfg
	}
}

// WithRetryPolicy replaces the full retry policy: the classification
// gate and, derived from it, the pacing.
func WithRetryPolicy(policy errors.RetryConfig) NATSStoreOption {
	return func(s *NATSStore) {
		s.policy = policy
		s.retryCfg = policy.ToRetryConfig()
	}
}

// WithRequestFunc replaces the transport, for tests
func WithRequestFunc(fn RequestFunc) NATSStoreOption {
	return func(s *NATSStore) {
		if fn != nil {
			s.request = fn
		}
	}
}

// NewNATSStore creates a fact source backed by a NATS connection.
func NewNATSStore(nc *nats.Conn, opts ...NATSStoreOption) *NATSStore {
	policy := errors.DefaultRetryConfig()
	s := &NATSStore{
		subjectPrefix: DefaultSubjectPrefix,
		timeout:       DefaultRequestTimeout,
		policy:        policy,
		retryCfg:      policy.ToRetryConfig(),
	}
	if nc != nil {
		s.request = func(ctx context.Context, subject string, data []byte) ([]byte, error) {
			msg, err := nc.RequestWithContext(ctx, subject, data)
			if err != nil {
				return nil, err
			}
			return msg.Data, nil
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// equivalenceFact is the wire form of one equivalence assertion.
type equivalenceFact struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Cost   float64 `json:"cost"`
}

// transformationFact is the wire form of one transformation descriptor.
type transformationFact struct {
	ID      string   `json:"id"`
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
	Cost    float64  `json:"cost"`
}

type equivalencesReply struct {
	Equivalences []equivalenceFact `json:"equivalences"`
}

type transformationsReply struct {
	Transformations []transformationFact `json:"transformations"`
}

// EquivalenceRelations requests every equivalence assertion from the
// remote knowledge base.
func (s *NATSStore) EquivalenceRelations(ctx context.Context) ([]mapping.EquivalenceRelation, error) {
	data, err := s.fetch(ctx, equivalencesSubject)
	if err != nil {
		return nil, errors.WrapTransient(err, "NATSStore", "EquivalenceRelations", "request facts")
	}

	var reply equivalencesReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %v", errors.ErrMalformedFact, err),
			"NATSStore", "EquivalenceRelations", "decode reply")
	}

	out := make([]mapping.EquivalenceRelation, 0, len(reply.Equivalences))
	for _, f := range reply.Equivalences {
		out = append(out, mapping.EquivalenceRelation{
			Source: mapping.Concept(f.Source),
			Target: mapping.Concept(f.Target),
			Cost:   f.Cost,
		})
	}
	return out, nil
}

// Transformations requests every transformation descriptor from the
// remote knowledge base.
func (s *NATSStore) Transformations(ctx context.Context) ([]mapping.TransformationDescriptor, error) {
	data, err := s.fetch(ctx, transformationsSubject)
	if err != nil {
		return nil, errors.WrapTransient(err, "NATSStore", "Transformations", "request facts")
	}

	var reply transformationsReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %v", errors.ErrMalformedFact, err),
			"NATSStore", "Transformations", "decode reply")
	}

	out := make([]mapping.TransformationDescriptor, 0, len(reply.Transformations))
	for _, f := range reply.Transformations {
		desc := mapping.TransformationDescriptor{
			ID:   f.ID,
			Cost: f.Cost,
		}
		for _, in := range f.Inputs {
			desc.Inputs = append(desc.Inputs, mapping.Concept(in))
		}
		for _, o := range f.Outputs {
			desc.Outputs = append(desc.Outputs, mapping.Concept(o))
		}
		out = append(out, desc)
	}
	return out, nil
}

func (s *NATSStore) fetch(ctx context.Context, kind string) ([]byte, error) {
	if s.request == nil {
		return nil, retry.NonRetryable(errors.WrapFatal(errors.ErrMissingConfig, "NATSStore", "fetch", "no connection"))
	}

	subject := s.subjectPrefix + "." + kind

	attempt := 0
	return retry.DoWithResult(ctx, s.retryCfg, func() ([]byte, error) {
		reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		data, err := s.request(reqCtx, subject, []byte("{}"))
		if err != nil {
			if err == nats.ErrNoResponders {
				err = fmt.Errorf("%w: no responders on %q", errors.ErrStoreUnavailable, subject)
			}
			if !s.policy.ShouldRetry(err, attempt) {
				return nil, retry.NonRetryable(err)
			}
			attempt++
			return nil, err
		}
		return data, nil
	})
}
