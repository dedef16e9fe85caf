// Package coordinator orchestrates guarded lead mutations against the remote
// collection service. It owns the per-(lead, kind) in-flight guard, updates
// the canonical store on success and broadcasts cross-view invalidation
// events. Errors never escape untyped: every outcome is an *apperr.Error or
// a result struct the caller branches on.
package coordinator

import (
	"context"
	"strings"
	"sync"

	"leadboard_backend/internal/events"
	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/internal/leads/remote"
	"leadboard_backend/internal/leads/store"
	"leadboard_backend/platform/apperr"
	"leadboard_backend/platform/logger"
)

// Kind identifies a mutation intent.
type Kind string

const (
	KindDelete    Kind = "delete"
	KindArchive   Kind = "archive"
	KindUnarchive Kind = "unarchive"
	KindReassign  Kind = "reassign"
)

// Optimistic receives archive-flag patches before the network round-trip
// completes, so already-rendered projections can update immediately. The
// canonical store remains the eventual source of truth.
type Optimistic interface {
	ApplyArchived(leadID string, archived bool)
}

// AttachmentUploader stores reassign-flow documents. Upload failures after a
// successful record update are reported as warnings, never as operation
// failures.
type AttachmentUploader interface {
	Upload(ctx context.Context, leadID, fileName, contentType string, data []byte) error
}

// Attachment is a document submitted alongside a reassignment.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ReassignFields is the partial update for a reassignment. Nil fields are
// carried forward from the current record; the remote update endpoint is a
// total replace, so dropping a field here would silently erase it.
type ReassignFields struct {
	AssigneeID            *string
	NextActionType        *string
	NextActionStatus      *string
	NextActionDescription *string
}

// ReassignResult reports a completed reassignment. FailedUploads lists
// attachments that could not be stored after the record update succeeded.
type ReassignResult struct {
	Lead          domain.Lead
	FailedUploads []string
}

type flightKey struct {
	id   string
	kind Kind
}

// Coordinator is the single mutation path for the lead collection.
type Coordinator struct {
	mu       sync.Mutex
	inFlight map[flightKey]struct{}

	remote      remote.API
	store       *store.Store
	bus         events.Bus
	optimistic  Optimistic
	attachments AttachmentUploader
	log         *logger.Logger
}

// New creates a coordinator. optimistic and attachments may be nil.
func New(remoteAPI remote.API, st *store.Store, bus events.Bus, optimistic Optimistic, attachments AttachmentUploader, log *logger.Logger) *Coordinator {
	return &Coordinator{
		inFlight:    make(map[flightKey]struct{}),
		remote:      remoteAPI,
		store:       st,
		bus:         bus,
		optimistic:  optimistic,
		attachments: attachments,
		log:         log,
	}
}

// InFlight reports whether a mutation of the given kind is outstanding for
// the lead.
func (c *Coordinator) InFlight(leadID string, kind Kind) bool {
	key := flightKey{id: domain.NormalizeLeadID(leadID), kind: kind}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[key]
	return ok
}

// Busy reports whether any mutation of any kind is outstanding for the lead.
// The HTTP layer serves this on the lead's busy endpoint so clients can
// disable the row's actions while a request is pending.
func (c *Coordinator) Busy(leadID string) bool {
	id := domain.NormalizeLeadID(leadID)
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.inFlight {
		if key.id == id {
			return true
		}
	}
	return false
}

// begin claims the in-flight slot for (id, kind). A second concurrent claim
// is rejected, not queued: the caller retries manually, which is the only
// retry path this design permits.
func (c *Coordinator) begin(leadID string, kind Kind) (func(), error) {
	key := flightKey{id: domain.NormalizeLeadID(leadID), kind: kind}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.inFlight[key]; dup {
		if c.log != nil {
			c.log.MutationRejected(string(kind), key.id)
		}
		return nil, apperr.Conflict("a " + string(kind) + " for this lead is already in progress")
	}
	c.inFlight[key] = struct{}{}
	return func() {
		c.mu.Lock()
		delete(c.inFlight, key)
		c.mu.Unlock()
	}, nil
}

// Delete removes the lead remotely, then from the canonical store, and
// broadcasts a deleted invalidation. A duplicate call while one is in flight
// is rejected client-side; the remote service sees exactly one request.
func (c *Coordinator) Delete(ctx context.Context, leadID string) error {
	done, err := c.begin(leadID, KindDelete)
	if err != nil {
		return err
	}
	defer done()

	id := domain.NormalizeLeadID(leadID)
	if err := c.remote.DeleteOne(ctx, id); err != nil {
		return coerce(err, "delete failed")
	}

	c.store.Remove(id)
	c.publish(ctx, events.NewLeadDeleted(id))
	return nil
}

// Archive flips the archived flag on. See setArchived for the optimistic
// contract.
func (c *Coordinator) Archive(ctx context.Context, leadID string) error {
	return c.setArchived(ctx, leadID, KindArchive, true)
}

// Unarchive flips the archived flag off.
func (c *Coordinator) Unarchive(ctx context.Context, leadID string) error {
	return c.setArchived(ctx, leadID, KindUnarchive, false)
}

// setArchived applies the flag optimistically to mounted projections, then
// confirms with the remote service and settles the canonical store. The
// surrounding dialog layer intentionally does not wait for the round-trip;
// a failure is logged to the side channel and the periodic refetch
// reconciles the divergence.
func (c *Coordinator) setArchived(ctx context.Context, leadID string, kind Kind, archived bool) error {
	done, err := c.begin(leadID, kind)
	if err != nil {
		return err
	}
	defer done()

	id := domain.NormalizeLeadID(leadID)
	if _, ok := c.store.Get(id); !ok {
		return apperr.NotFound("lead not found")
	}

	if c.optimistic != nil {
		c.optimistic.ApplyArchived(id, archived)
	}

	if err := c.remote.SetFlag(ctx, id, archived); err != nil {
		if c.log != nil {
			c.log.RemoteError(string(kind), id, err)
		}
		return coerce(err, string(kind)+" failed")
	}

	c.store.SetArchived(id, archived)
	c.publish(ctx, events.NewLeadUpdated(id))
	return nil
}

// Reassign merges the partial update over the full current record and
// submits the union. Every field not being changed is carried forward; the
// remote update endpoint replaces the record wholesale, so an omitted field
// is a silent data-loss bug.
func (c *Coordinator) Reassign(ctx context.Context, leadID string, fields ReassignFields, attachments []Attachment) (ReassignResult, error) {
	done, err := c.begin(leadID, KindReassign)
	if err != nil {
		return ReassignResult{}, err
	}
	defer done()

	id := domain.NormalizeLeadID(leadID)
	current, ok := c.store.Get(id)
	if !ok {
		return ReassignResult{}, apperr.NotFound("lead not found")
	}

	merged := merge(current, fields)
	updated, err := c.remote.UpdateOne(ctx, id, merged)
	if err != nil {
		return ReassignResult{}, coerce(err, "reassign failed")
	}

	c.store.Upsert(updated)
	c.publish(ctx, events.NewLeadUpdated(id))

	// The record update already succeeded; attachment failures downgrade to
	// a warning listing the specific files so the user does not resubmit
	// the whole operation.
	result := ReassignResult{Lead: updated}
	for _, att := range attachments {
		if c.attachments == nil {
			result.FailedUploads = append(result.FailedUploads, att.FileName)
			continue
		}
		if err := c.attachments.Upload(ctx, id, att.FileName, att.ContentType, att.Data); err != nil {
			if c.log != nil {
				c.log.RemoteError("attachment_upload", id, err)
			}
			result.FailedUploads = append(result.FailedUploads, att.FileName)
		}
	}
	return result, nil
}

func merge(current domain.Lead, fields ReassignFields) domain.Lead {
	merged := current
	if fields.AssigneeID != nil {
		merged.AssigneeID = strings.TrimSpace(*fields.AssigneeID)
	}
	if fields.NextActionType != nil {
		merged.NextAction.Type = *fields.NextActionType
	}
	if fields.NextActionStatus != nil {
		merged.NextAction.Status = *fields.NextActionStatus
	}
	if fields.NextActionDescription != nil {
		merged.NextAction.Description = *fields.NextActionDescription
	}
	return merged
}

func (c *Coordinator) publish(ctx context.Context, event events.Event) {
	if c.bus != nil {
		c.bus.Publish(ctx, event)
	}
}

// coerce wraps non-typed errors so handlers always receive an *apperr.Error.
func coerce(err error, message string) error {
	if _, ok := err.(*apperr.Error); ok {
		return err
	}
	return apperr.Wrap(apperr.KindUnavailable, message, err)
}
