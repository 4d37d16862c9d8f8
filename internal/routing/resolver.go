package routing

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrExitNotFound is returned when an exit reference does not resolve to
	// any entity owned by the tenant. Callers surface it as a validation
	// finding, never as a fatal error.
	ErrExitNotFound = errors.New("routing: exit not found")
	// ErrLookupUnavailable is returned when a lookup collaborator fails for
	// a reason other than the reference being unknown, so callers can retry
	// instead of treating the reference as invalid.
	ErrLookupUnavailable = errors.New("routing: lookup unavailable")
	// ErrInvalidExitKind is returned for references outside the closed set
	// of exit kinds.
	ErrInvalidExitKind = errors.New("routing: invalid exit kind")
)

// DestinationRecord is the lookup result for a destination reference.
type DestinationRecord struct {
	ID         string
	IsQueue    bool
	IsMappable bool
}

// LabelRecord is the lookup result for a label reference.
type LabelRecord struct {
	ID string
}

// PromptRecord is the lookup result for a prompt reference.
type PromptRecord struct {
	ID          string
	AfterPrompt AfterPromptBehavior
}

// DestinationLookup resolves destination values within a tenant.
type DestinationLookup interface {
	LookupDestination(ctx context.Context, tenantID, value string) (DestinationRecord, error)
}

// LabelLookup resolves label values within a tenant.
type LabelLookup interface {
	LookupLabel(ctx context.Context, tenantID, value string) (LabelRecord, error)
}

// PromptLookup resolves prompt values within a tenant.
type PromptLookup interface {
	LookupPrompt(ctx context.Context, tenantID, value string) (PromptRecord, error)
}

// Resolver normalizes raw exit references into typed Exit values using the
// injected tenant-scoped lookups. It holds no state of its own and is safe
// for concurrent use.
type Resolver struct {
	destinations DestinationLookup
	labels       LabelLookup
	prompts      PromptLookup
}

// NewResolver wires the lookup collaborators for exit resolution.
func NewResolver(destinations DestinationLookup, labels LabelLookup, prompts PromptLookup) *Resolver {
	return &Resolver{
		destinations: destinations,
		labels:       labels,
		prompts:      prompts,
	}
}

// Resolve looks up the referenced entity and computes the exit's derived
// metadata. A reference that cannot be resolved yields ErrExitNotFound; any
// other lookup failure is wrapped in ErrLookupUnavailable.
func (r *Resolver) Resolve(ctx context.Context, kind ExitKind, value, dequeueValue, tenantID string) (Exit, error) {
	if r == nil {
		return Exit{}, fmt.Errorf("%w: resolver not configured", ErrLookupUnavailable)
	}

	exit := Exit{
		Kind:         kind,
		Value:        value,
		DequeueValue: dequeueValue,
		TenantID:     tenantID,
	}

	switch kind {
	case KindDestination:
		if r.destinations == nil {
			return Exit{}, fmt.Errorf("%w: destination lookup not configured", ErrLookupUnavailable)
		}
		record, err := r.destinations.LookupDestination(ctx, tenantID, value)
		if err != nil {
			return Exit{}, mapLookupError(err, kind, value)
		}
		exit.EntityID = record.ID
		exit.RequiresDequeue = record.IsQueue
		if record.IsMappable {
			exit.Code = TypeMapped
		} else {
			exit.Code = TypeDestination
		}
	case KindLabel:
		if r.labels == nil {
			return Exit{}, fmt.Errorf("%w: label lookup not configured", ErrLookupUnavailable)
		}
		record, err := r.labels.LookupLabel(ctx, tenantID, value)
		if err != nil {
			return Exit{}, mapLookupError(err, kind, value)
		}
		exit.EntityID = record.ID
		exit.Code = TypeLabel
	case KindPrompt:
		if r.prompts == nil {
			return Exit{}, fmt.Errorf("%w: prompt lookup not configured", ErrLookupUnavailable)
		}
		record, err := r.prompts.LookupPrompt(ctx, tenantID, value)
		if err != nil {
			return Exit{}, mapLookupError(err, kind, value)
		}
		exit.EntityID = record.ID
		if record.AfterPrompt == AfterPromptContinue {
			exit.Code = TypePromptContinue
		} else {
			exit.Code = TypePromptStop
		}
	default:
		return Exit{}, fmt.Errorf("%w: %q", ErrInvalidExitKind, kind)
	}

	return exit, nil
}

// ResolveRef resolves an unresolved reference value.
func (r *Resolver) ResolveRef(ctx context.Context, ref Ref, tenantID string) (Exit, error) {
	return r.Resolve(ctx, ref.Kind, ref.Value, ref.DequeueValue, tenantID)
}

func mapLookupError(err error, kind ExitKind, value string) error {
	if errors.Is(err, ErrExitNotFound) {
		return fmt.Errorf("%w: %s %q", ErrExitNotFound, kind, value)
	}
	return fmt.Errorf("%w: %s %q: %v", ErrLookupUnavailable, kind, value, err)
}
