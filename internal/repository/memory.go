package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// MemoryComplaintRepository keeps complaints in process memory. Each domain
// has its own partition and each complaint its own lock, so lab and icc
// traffic never contend and transitions serialize per id only.
type MemoryComplaintRepository struct {
	partitions map[domain.Domain]*complaintPartition
}

type complaintPartition struct {
	mu    sync.RWMutex
	byID  map[string]*complaintEntry
	order []*complaintEntry
}

type complaintEntry struct {
	mu        sync.Mutex
	complaint *domain.Complaint
}

// NewMemoryComplaintRepository creates an empty store for every known domain.
func NewMemoryComplaintRepository() *MemoryComplaintRepository {
	partitions := make(map[domain.Domain]*complaintPartition, len(domain.Domains))
	for _, d := range domain.Domains {
		partitions[d] = &complaintPartition{byID: make(map[string]*complaintEntry)}
	}
	return &MemoryComplaintRepository{partitions: partitions}
}

func (r *MemoryComplaintRepository) Create(_ context.Context, complaint *domain.Complaint) error {
	p, ok := r.partitions[complaint.Domain]
	if !ok {
		return ErrNotFound
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.byID[complaint.ID]; exists {
		return ErrDuplicate
	}
	entry := &complaintEntry{complaint: complaint.Clone()}
	p.byID[complaint.ID] = entry
	p.order = append(p.order, entry)
	return nil
}

func (r *MemoryComplaintRepository) List(_ context.Context, d domain.Domain) ([]domain.Complaint, error) {
	p, ok := r.partitions[d]
	if !ok {
		return []domain.Complaint{}, nil
	}
	p.mu.RLock()
	entries := append([]*complaintEntry(nil), p.order...)
	p.mu.RUnlock()

	result := make([]domain.Complaint, 0, len(entries))
	for _, entry := range entries {
		result = append(result, *entry.snapshot())
	}
	return result, nil
}

func (r *MemoryComplaintRepository) Get(_ context.Context, d domain.Domain, id string) (*domain.Complaint, error) {
	entry, err := r.entry(d, id)
	if err != nil {
		return nil, err
	}
	return entry.snapshot(), nil
}

func (r *MemoryComplaintRepository) ApplyTransition(ctx context.Context, d domain.Domain, id string, status domain.ComplaintStatus, at time.Time) (domain.TransitionResult, error) {
	entry, err := r.entry(d, id)
	if err != nil {
		return domain.TransitionResult{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return domain.TransitionResult{}, err
	}

	c := entry.complaint
	result := domain.TransitionResult{Previous: c.Status}
	if c.Status != status {
		c.Status = status
		c.UpdatedAt = at
		c.StatusHistory = append(c.StatusHistory, domain.StatusChange{Status: status, ChangedAt: at})
		result.Applied = true
	}
	result.Complaint = c.Clone()
	return result, nil
}

func (r *MemoryComplaintRepository) entry(d domain.Domain, id string) (*complaintEntry, error) {
	p, ok := r.partitions[d]
	if !ok {
		return nil, ErrNotFound
	}
	p.mu.RLock()
	entry, ok := p.byID[id]
	p.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (e *complaintEntry) snapshot() *domain.Complaint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.complaint.Clone()
}

// MemoryAdminRepository keeps admins in process memory, keyed by domain and email.
type MemoryAdminRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.Admin
	byEmail map[domain.Domain]map[string]*domain.Admin
}

// NewMemoryAdminRepository creates an empty admin registry.
func NewMemoryAdminRepository() *MemoryAdminRepository {
	return &MemoryAdminRepository{
		byID:    make(map[string]*domain.Admin),
		byEmail: make(map[domain.Domain]map[string]*domain.Admin),
	}
}

func (r *MemoryAdminRepository) Create(_ context.Context, admin *domain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	emails, ok := r.byEmail[admin.Domain]
	if !ok {
		emails = make(map[string]*domain.Admin)
		r.byEmail[admin.Domain] = emails
	}
	key := strings.ToLower(admin.Email)
	if _, exists := emails[key]; exists {
		return ErrDuplicate
	}
	if _, exists := r.byID[admin.ID]; exists {
		return ErrDuplicate
	}
	stored := *admin
	emails[key] = &stored
	r.byID[admin.ID] = &stored
	return nil
}

func (r *MemoryAdminRepository) GetByID(_ context.Context, d domain.Domain, id string) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	admin, ok := r.byID[id]
	if !ok || admin.Domain != d {
		return nil, ErrNotFound
	}
	out := *admin
	return &out, nil
}

func (r *MemoryAdminRepository) GetByEmail(_ context.Context, d domain.Domain, email string) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	admin, ok := r.byEmail[d][strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *admin
	return &out, nil
}
