package application

import (
	"context"
	"errors"

	"github.com/example/callroute-admin/internal/persistence"
	"github.com/example/callroute-admin/internal/routing"
)

// DirectoryLookups adapts the persistence directory repository to the lookup
// interfaces the exit resolver consumes. A missing row becomes
// routing.ErrExitNotFound so resolution treats it as an invalid reference
// rather than an outage.
type DirectoryLookups struct {
	directory persistence.DirectoryRepository
}

// NewDirectoryLookups wraps the directory repository.
func NewDirectoryLookups(directory persistence.DirectoryRepository) *DirectoryLookups {
	return &DirectoryLookups{directory: directory}
}

// LookupDestination implements routing.DestinationLookup.
func (d *DirectoryLookups) LookupDestination(ctx context.Context, tenantID, value string) (routing.DestinationRecord, error) {
	dest, err := d.directory.GetDestination(ctx, tenantID, value)
	if err != nil {
		return routing.DestinationRecord{}, mapDirectoryError(err)
	}
	return routing.DestinationRecord{
		ID:         dest.ID,
		IsQueue:    dest.IsQueue,
		IsMappable: dest.IsMappable,
	}, nil
}

// LookupLabel implements routing.LabelLookup.
func (d *DirectoryLookups) LookupLabel(ctx context.Context, tenantID, value string) (routing.LabelRecord, error) {
	label, err := d.directory.GetLabel(ctx, tenantID, value)
	if err != nil {
		return routing.LabelRecord{}, mapDirectoryError(err)
	}
	return routing.LabelRecord{ID: label.ID}, nil
}

// LookupPrompt implements routing.PromptLookup.
func (d *DirectoryLookups) LookupPrompt(ctx context.Context, tenantID, value string) (routing.PromptRecord, error) {
	prompt, err := d.directory.GetPrompt(ctx, tenantID, value)
	if err != nil {
		return routing.PromptRecord{}, mapDirectoryError(err)
	}
	return routing.PromptRecord{
		ID:          prompt.ID,
		AfterPrompt: routing.AfterPromptBehavior(prompt.AfterPrompt),
	}, nil
}

func mapDirectoryError(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return routing.ErrExitNotFound
	}
	return err
}
