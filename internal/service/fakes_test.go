package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/football-field-booking/internal/model"
	"github.com/iliyamo/football-field-booking/internal/queue"
	"github.com/iliyamo/football-field-booking/internal/repository"
)

// memDB is an in-memory stand-in for the MySQL schema.  Its TxManager
// serialises transactions, which is what InnoDB's FOR UPDATE re-checks
// achieve for conflicting writers.
type memDB struct {
	txMu sync.Mutex
	mu   sync.Mutex

	fields    map[uint64]*model.Field
	slots     map[uint64]*model.TimeSlot
	bookings  map[uint64]*model.Booking
	locks     map[string]*model.FieldLock
	opponents map[uint64]*model.Opponent
	feedback  map[uint64]*model.Feedback
	nextID    uint64

	// hideBookings makes FindOverlapping miss existing rows so the unique
	// index path can be exercised.
	hideBookings bool
}

func newMemDB() *memDB {
	return &memDB{
		fields:    map[uint64]*model.Field{},
		slots:     map[uint64]*model.TimeSlot{},
		bookings:  map[uint64]*model.Booking{},
		locks:     map[string]*model.FieldLock{},
		opponents: map[uint64]*model.Opponent{},
		feedback:  map[uint64]*model.Feedback{},
		nextID:    100,
	}
}

func (m *memDB) id() uint64 { m.nextID++; return m.nextID }

func lockKey(fieldID, slotID uint64, date time.Time) string {
	return fmt.Sprintf("%d/%d/%s", fieldID, slotID, date.Format(model.DateLayout))
}

type memTx struct{ db *memDB }

func (t memTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t.db.txMu.Lock()
	defer t.db.txMu.Unlock()
	return fn(ctx)
}

func (m *memDB) addField(f model.Field) *model.Field {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.ID == 0 {
		f.ID = m.id()
	}
	m.fields[f.ID] = &f
	return &f
}

func (m *memDB) addSlot(s model.TimeSlot) *model.TimeSlot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == 0 {
		s.ID = m.id()
	}
	m.slots[s.ID] = &s
	return &s
}

// fields

type memFields struct{ *memDB }

func (m memFields) GetByID(_ context.Context, id uint64) (*model.Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fields[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m memFields) List(_ context.Context, onlyActive bool) ([]model.Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Field{}
	for _, f := range m.fields {
		if !onlyActive || f.IsActive {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memFields) Create(_ context.Context, f *model.Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = m.id()
	cp := *f
	m.fields[f.ID] = &cp
	return nil
}

func (m memFields) Update(_ context.Context, f *model.Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fields[f.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *f
	m.fields[f.ID] = &cp
	return nil
}

func (m memFields) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fields[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.fields, id)
	return nil
}

func (m memFields) CountActiveBookingsFrom(_ context.Context, fieldID uint64, from time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.bookings {
		if b.FieldID == fieldID && !b.BookingDate.Before(from) &&
			(b.Status == model.BookingPending || b.Status == model.BookingConfirmed) {
			n++
		}
	}
	return n, nil
}

// time slots

type memSlots struct{ *memDB }

func (m memSlots) GetByID(_ context.Context, id uint64) (*model.TimeSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m memSlots) ListByField(_ context.Context, fieldID uint64, onlyActive bool) ([]model.TimeSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.TimeSlot{}
	for _, s := range m.slots {
		if s.FieldID == fieldID && (!onlyActive || s.IsActive) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (m memSlots) Create(_ context.Context, s *model.TimeSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.slots {
		if o.FieldID == s.FieldID && o.StartTime == s.StartTime && o.EndTime == s.EndTime {
			return repository.ErrDuplicate
		}
	}
	s.ID = m.id()
	cp := *s
	m.slots[s.ID] = &cp
	return nil
}

func (m memSlots) Update(_ context.Context, s *model.TimeSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[s.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *s
	m.slots[s.ID] = &cp
	return nil
}

func (m memSlots) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.slots, id)
	return nil
}

func (m memSlots) CountActiveBookingsFrom(_ context.Context, slotID uint64, from time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.bookings {
		if b.TimeSlotID == slotID && !b.BookingDate.Before(from) &&
			(b.Status == model.BookingPending || b.Status == model.BookingConfirmed) {
			n++
		}
	}
	return n, nil
}

// bookings

type memBookings struct{ *memDB }

func (m memBookings) detail(b *model.Booking) model.BookingDetail {
	d := model.BookingDetail{Booking: *b, BookingDateStr: b.Date()}
	if f, ok := m.fields[b.FieldID]; ok {
		d.FieldName, d.FieldSize = f.Name, f.Size
	}
	if s, ok := m.slots[b.TimeSlotID]; ok {
		d.StartTime, d.EndTime = s.StartTime, s.EndTime
	}
	return d
}

func (m memBookings) Create(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.bookings {
		if o.Status.Blocks() && o.FieldID == b.FieldID && o.TimeSlotID == b.TimeSlotID && o.BookingDate.Equal(b.BookingDate) {
			return repository.ErrDuplicate
		}
	}
	b.ID = m.id()
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m memBookings) GetDetail(_ context.Context, id uint64) (*model.BookingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d := m.detail(b)
	return &d, nil
}

func (m memBookings) FindOverlapping(_ context.Context, fieldID uint64, date time.Time, start, end string) ([]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hideBookings {
		return nil, nil
	}
	want := model.TimeSlot{StartTime: start, EndTime: end}
	var ids []uint64
	for _, b := range m.bookings {
		if b.FieldID != fieldID || !b.BookingDate.Equal(date) || !b.Status.Blocks() {
			continue
		}
		if s, ok := m.slots[b.TimeSlotID]; ok && s.Overlaps(want) {
			ids = append(ids, b.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m memBookings) ListForFieldDate(_ context.Context, fieldID uint64, date time.Time) ([]model.BookingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.BookingDetail{}
	for _, b := range m.bookings {
		if b.FieldID == fieldID && b.BookingDate.Equal(date) && b.Status.Blocks() {
			out = append(out, m.detail(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (m memBookings) ListByUser(_ context.Context, userID uint64) ([]model.BookingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.BookingDetail{}
	for _, b := range m.bookings {
		if b.UserID != nil && *b.UserID == userID {
			out = append(out, m.detail(b))
		}
	}
	return out, nil
}

func (m memBookings) List(_ context.Context, f model.BookingFilter) ([]model.BookingDetail, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.BookingDetail{}
	for _, b := range m.bookings {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.FieldID != 0 && b.FieldID != f.FieldID {
			continue
		}
		if f.DateFrom != nil && b.BookingDate.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && b.BookingDate.After(*f.DateTo) {
			continue
		}
		out = append(out, m.detail(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m memBookings) UpdateStatus(_ context.Context, id uint64, status model.BookingStatus, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Status, b.CancelReason = status, reason
	return nil
}

func (m memBookings) UpdatePaymentStatus(_ context.Context, id uint64, status model.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.PaymentStatus = status
	return nil
}

func (m memBookings) CompletePast(_ context.Context, today time.Time, clock string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, b := range m.bookings {
		if b.Status != model.BookingConfirmed {
			continue
		}
		s := m.slots[b.TimeSlotID]
		if b.BookingDate.Before(today) || (b.BookingDate.Equal(today) && s != nil && s.EndTime <= clock) {
			b.Status = model.BookingCompleted
			n++
		}
	}
	return n, nil
}

// locks

type memLocks struct{ *memDB }

func (m memLocks) Get(_ context.Context, fieldID, slotID uint64, date time.Time) (*model.FieldLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[lockKey(fieldID, slotID, date)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m memLocks) Upsert(_ context.Context, l *model.FieldLock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.IsLocked = true
	l.Day = l.Date.Format(model.DateLayout)
	key := lockKey(l.FieldID, l.TimeSlotID, l.Date)
	if old, ok := m.locks[key]; ok {
		l.ID = old.ID
	} else {
		l.ID = m.id()
	}
	cp := *l
	m.locks[key] = &cp
	return nil
}

func (m memLocks) Unlock(_ context.Context, fieldID, slotID uint64, date time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[lockKey(fieldID, slotID, date)]
	if !ok || !l.IsLocked {
		return 0, nil
	}
	l.IsLocked, l.LockReason = false, ""
	return 1, nil
}

func (m memLocks) UnlockAll(_ context.Context, fieldID uint64, date time.Time) ([]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uint64
	for _, l := range m.locks {
		if l.FieldID == fieldID && l.Date.Equal(date) && l.IsLocked {
			l.IsLocked, l.LockReason = false, ""
			ids = append(ids, l.TimeSlotID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m memLocks) ListByFieldDate(_ context.Context, fieldID uint64, date time.Time) ([]model.FieldLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.FieldLock{}
	for _, l := range m.locks {
		if l.FieldID == fieldID && l.Date.Equal(date) && l.IsLocked {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimeSlotID < out[j].TimeSlotID })
	return out, nil
}

// opponents

type memOpponents struct{ *memDB }

func (m memOpponents) Create(_ context.Context, o *model.Opponent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.opponents {
		if x.BookingID == o.BookingID {
			return repository.ErrDuplicate
		}
	}
	o.ID = m.id()
	cp := *o
	m.opponents[o.ID] = &cp
	return nil
}

func (m memOpponents) GetByID(_ context.Context, id uint64) (*model.Opponent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.opponents[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m memOpponents) GetByBookingID(_ context.Context, bookingID uint64) (*model.Opponent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.opponents {
		if o.BookingID == bookingID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m memOpponents) ListOpen(_ context.Context, f model.OpponentFilter, now time.Time) ([]model.Opponent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Opponent{}
	for _, o := range m.opponents {
		if o.Open(now) && (f.FieldID == 0 || o.FieldID == f.FieldID) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}

func (m memOpponents) Update(_ context.Context, o *model.Opponent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.opponents[o.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *o
	m.opponents[o.ID] = &cp
	return nil
}

func (m memOpponents) CancelByBooking(_ context.Context, bookingID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.opponents {
		if o.BookingID == bookingID && (o.Status == model.OpponentSearching || o.Status == model.OpponentMatched) {
			o.Status = model.OpponentCancelled
		}
	}
	return nil
}

func (m memOpponents) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, o := range m.opponents {
		if !o.ExpiresAt.After(now) {
			delete(m.opponents, id)
			n++
		}
	}
	return n, nil
}

// events

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// fixture wires every service over one memDB with a fixed clock.
type fixture struct {
	db        *memDB
	events    *recordingPublisher
	avail     *Availability
	bookings  *BookingService
	locks     *FieldLockService
	opponents *OpponentService
	catalog   *CatalogService
	field     *model.Field
	slot      *model.TimeSlot
}

// fixedNow is Monday 2024-06-10 08:00 UTC.
var fixedNow = time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	db := newMemDB()
	tx := memTx{db}
	events := &recordingPublisher{}
	avail := NewAvailability(memFields{db}, memSlots{db}, memBookings{db}, memLocks{db})
	f := &fixture{
		db:        db,
		events:    events,
		avail:     avail,
		bookings:  NewBookingService(tx, avail, memBookings{db}, memOpponents{db}, events, time.UTC, "VN"),
		locks:     NewFieldLockService(tx, avail, memSlots{db}, memLocks{db}, time.UTC),
		opponents: NewOpponentService(tx, memBookings{db}, memOpponents{db}, time.UTC, "VN"),
		catalog:   NewCatalogService(memFields{db}, memSlots{db}, nil, time.UTC),
	}
	clock := func() time.Time { return fixedNow }
	f.bookings.now, f.locks.now, f.opponents.now, f.catalog.now = clock, clock, clock, clock

	f.field = db.addField(model.Field{ID: 1, Name: "Field A", Size: model.FieldSize7, PricePerHour: 250000, IsActive: true})
	f.slot = db.addSlot(model.TimeSlot{ID: 5, FieldID: 1, StartTime: "18:00", EndTime: "19:00",
		WeekdayPrice: 200000, WeekendPrice: 300000, IsActive: true})
	return f
}

func mustDate(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func bookingInput(date string) CreateBookingInput {
	return CreateBookingInput{
		FieldID:       1,
		TimeSlotID:    5,
		Date:          date,
		CustomerName:  "Nguyen Van A",
		CustomerPhone: "0912345678",
	}
}

var (
	admin    = Actor{UserID: 1, Role: model.RoleAdmin}
	customer = Actor{UserID: 42, Role: model.RoleCustomer}
	other    = Actor{UserID: 43, Role: model.RoleCustomer}
)
