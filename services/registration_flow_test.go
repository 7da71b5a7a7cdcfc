package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/fedsports/registration-system/live"
	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/repositories"
)

// stubDriver satisfies database/sql with no-op transactions so services that
// own a BeginTx/Commit cycle can run against in-memory repositories.
type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

var stubDB = func() *sql.DB {
	sql.Register("stubtx", stubDriver{})
	db, err := sql.Open("stubtx", "")
	if err != nil {
		panic(err)
	}
	return db
}()

type stubEventRepo struct {
	event *models.Event
}

func (s *stubEventRepo) Create(context.Context, repositories.SQLExecutor, *models.Event) error {
	return errors.New("not implemented")
}

func (s *stubEventRepo) GetByID(_ context.Context, id int) (*models.Event, error) {
	if s.event == nil || s.event.ID != id {
		return nil, repositories.ErrEventNotFound
	}
	e := *s.event
	return &e, nil
}

func (s *stubEventRepo) List(context.Context, repositories.ListEventsFilter) ([]models.Event, error) {
	return nil, errors.New("not implemented")
}

func (s *stubEventRepo) Update(context.Context, repositories.SQLExecutor, *models.Event) error {
	return errors.New("not implemented")
}

func (s *stubEventRepo) UpdateStatus(context.Context, int, models.EventStatus) error {
	return errors.New("not implemented")
}

func (s *stubEventRepo) Delete(context.Context, repositories.SQLExecutor, int) error {
	return errors.New("not implemented")
}

func (s *stubEventRepo) GetExportConfig(context.Context, int) (*string, error) {
	return nil, errors.New("not implemented")
}

func (s *stubEventRepo) UpdateExportConfig(context.Context, int, string) error {
	return errors.New("not implemented")
}

type stubAdhesionRepo struct {
	rows map[[2]int]*models.Adhesion
}

func newStubAdhesionRepo() *stubAdhesionRepo {
	return &stubAdhesionRepo{rows: map[[2]int]*models.Adhesion{}}
}

func (s *stubAdhesionRepo) CreateBatch(context.Context, repositories.SQLExecutor, int, []int) error {
	return errors.New("not implemented")
}

func (s *stubAdhesionRepo) Get(_ context.Context, eventID, academyID int) (*models.Adhesion, error) {
	row, ok := s.rows[[2]int{eventID, academyID}]
	if !ok {
		return nil, repositories.ErrAdhesionNotFound
	}
	a := *row
	return &a, nil
}

func (s *stubAdhesionRepo) ListByEvent(_ context.Context, eventID int) ([]models.Adhesion, error) {
	var out []models.Adhesion
	for _, row := range s.rows {
		if row.EventID == eventID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *stubAdhesionRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, adhesion *models.Adhesion) error {
	a := *adhesion
	s.rows[[2]int{adhesion.EventID, adhesion.AcademyID}] = &a
	return nil
}

type stubAthleteRepo struct {
	athletes map[int]*models.Athlete
	written  map[string]interface{}
}

func (s *stubAthleteRepo) GetByID(_ context.Context, id int) (*models.Athlete, error) {
	athlete, ok := s.athletes[id]
	if !ok {
		return nil, repositories.ErrAthleteNotFound
	}
	a := *athlete
	return &a, nil
}

func (s *stubAthleteRepo) GetByUserID(context.Context, int) (*models.Athlete, error) {
	return nil, repositories.ErrAthleteNotFound
}

func (s *stubAthleteRepo) UpdateColumns(_ context.Context, _ repositories.SQLExecutor, _ int, columns map[string]interface{}) error {
	s.written = columns
	return nil
}

func (s *stubAthleteRepo) IsGuardianOf(context.Context, int, int) (bool, error) {
	return false, nil
}

func (s *stubAthleteRepo) GuardianAcademyIDs(context.Context, int) ([]int, error) {
	return nil, nil
}

type stubPaymentRepo struct {
	payments map[[2]int]*models.AcademyPayment
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{payments: map[[2]int]*models.AcademyPayment{}}
}

func (s *stubPaymentRepo) Get(_ context.Context, eventID, academyID int) (*models.AcademyPayment, error) {
	p, ok := s.payments[[2]int{eventID, academyID}]
	if !ok {
		return nil, repositories.ErrPaymentNotFound
	}
	out := *p
	return &out, nil
}

func (s *stubPaymentRepo) ListByEvent(context.Context, int) ([]models.AcademyPayment, error) {
	return nil, errors.New("not implemented")
}

func (s *stubPaymentRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, payment *models.AcademyPayment) error {
	p := *payment
	s.payments[[2]int{payment.EventID, payment.AcademyID}] = &p
	return nil
}

func (s *stubPaymentRepo) DeleteByEventAndAcademy(_ context.Context, _ repositories.SQLExecutor, eventID, academyID int) error {
	delete(s.payments, [2]int{eventID, academyID})
	return nil
}

type stubRegistrationRepo struct {
	rows   []*models.Registration
	nextID int
}

func (s *stubRegistrationRepo) Create(_ context.Context, _ repositories.SQLExecutor, reg *models.Registration) error {
	s.nextID++
	reg.ID = s.nextID
	row := *reg
	s.rows = append(s.rows, &row)
	return nil
}

func (s *stubRegistrationRepo) GetByID(_ context.Context, id int) (*models.Registration, error) {
	for _, row := range s.rows {
		if row.ID == id {
			r := *row
			return &r, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (s *stubRegistrationRepo) ListByEventAndAcademy(_ context.Context, eventID, academyID int) ([]models.Registration, error) {
	var out []models.Registration
	for _, row := range s.rows {
		if row.EventID == eventID && row.AcademyID == academyID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *stubRegistrationRepo) ListSubmittedByEvent(_ context.Context, eventID int) ([]models.Registration, error) {
	var out []models.Registration
	for _, row := range s.rows {
		if row.EventID == eventID && row.Status == models.RegistrationSubmitted {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *stubRegistrationRepo) ListCategoriesByAthlete(_ context.Context, eventID, academyID, athleteID int) ([]string, error) {
	var out []string
	for _, row := range s.rows {
		if row.EventID == eventID && row.AcademyID == academyID &&
			row.AthleteID != nil && *row.AthleteID == athleteID {
			if c := row.Category(); c != "" {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (s *stubRegistrationRepo) WalkInExists(_ context.Context, eventID, academyID, athleteID int) (bool, error) {
	for _, row := range s.rows {
		if row.WalkIn && row.EventID == eventID && row.AcademyID == academyID &&
			row.AthleteID != nil && *row.AthleteID == athleteID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRegistrationRepo) UpdateFormData(_ context.Context, id int, formData map[string]string) error {
	for _, row := range s.rows {
		if row.ID == id {
			row.FormData = formData
			return nil
		}
	}
	return repositories.ErrRegistrationNotFound
}

func (s *stubRegistrationRepo) Delete(_ context.Context, id int) error {
	for i, row := range s.rows {
		if row.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrRegistrationNotFound
}

func (s *stubRegistrationRepo) SubmitBatch(_ context.Context, _ repositories.SQLExecutor, eventID, academyID int, submittedAt time.Time) (int64, error) {
	var flipped int64
	for _, row := range s.rows {
		if row.EventID == eventID && row.AcademyID == academyID && row.Status != models.RegistrationSubmitted {
			row.Status = models.RegistrationSubmitted
			at := submittedAt
			row.SubmittedAt = &at
			flipped++
		}
	}
	return flipped, nil
}

func (s *stubRegistrationRepo) RevertBatch(_ context.Context, _ repositories.SQLExecutor, eventID, academyID int) (int64, error) {
	var reverted int64
	for _, row := range s.rows {
		if row.EventID == eventID && row.AcademyID == academyID && row.Status == models.RegistrationSubmitted {
			row.Status = models.RegistrationDraft
			row.SubmittedAt = nil
			reverted++
		}
	}
	return reverted, nil
}

func (s *stubRegistrationRepo) DeleteByEventAndAcademy(_ context.Context, _ repositories.SQLExecutor, eventID, academyID int) (int64, error) {
	var kept []*models.Registration
	var removed int64
	for _, row := range s.rows {
		if row.EventID == eventID && row.AcademyID == academyID {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	s.rows = kept
	return removed, nil
}

func (s *stubRegistrationRepo) CountByStatus(_ context.Context, eventID, academyID int, status models.RegistrationStatus) (int, error) {
	count := 0
	for _, row := range s.rows {
		if row.EventID == eventID && row.AcademyID == academyID && row.Status == status {
			count++
		}
	}
	return count, nil
}

type registrationFixture struct {
	service  *RegistrationService
	regs     *stubRegistrationRepo
	events   *stubEventRepo
	adhesion *stubAdhesionRepo
	athletes *stubAthleteRepo
	payments *stubPaymentRepo
	staff    *models.User
}

func newRegistrationFixture(event *models.Event) *registrationFixture {
	regs := &stubRegistrationRepo{}
	events := &stubEventRepo{event: event}
	adhesion := newStubAdhesionRepo()
	athletes := &stubAthleteRepo{athletes: map[int]*models.Athlete{}}
	payments := newStubPaymentRepo()
	scope := NewScopeService(&fakeUserRepo{}, &fakeTenantRepo{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := live.NewHub(logger)

	service := NewRegistrationService(stubDB, regs, events, adhesion, athletes, payments, scope, hub, logger)
	return &registrationFixture{
		service:  service,
		regs:     regs,
		events:   events,
		adhesion: adhesion,
		athletes: athletes,
		payments: payments,
		staff:    &models.User{ID: 100, Roles: []models.UserRole{models.RoleAcademyManager}, AcademyID: intPtr(1)},
	}
}

func openTestEvent() *models.Event {
	return &models.Event{
		ID:            10,
		AssociationID: 2,
		Name:          "Copa Teste",
		EndAt:         time.Now().Add(48 * time.Hour),
		Status:        models.EventActive,
	}
}

func (f *registrationFixture) adhere(academyID int) {
	f.adhesion.rows[[2]int{f.events.event.ID, academyID}] = &models.Adhesion{
		EventID: f.events.event.ID, AcademyID: academyID, Adhered: true,
	}
}

func TestSubmitFormCreatesOneRowPerCategory(t *testing.T) {
	f := newRegistrationFixture(openTestEvent())
	f.adhere(1)
	f.athletes.athletes[7] = &models.Athlete{ID: 7, AcademyID: intPtr(1), Name: "Ana"}

	created, err := f.service.SubmitForm(context.Background(), f.staff, models.PanelAcademy, SubmitFormInput{
		EventID:    10,
		AcademyID:  1,
		AthleteID:  7,
		FormValues: map[string]string{"nome": "Ana", "peso": "55"},
		Categories: []string{"Sub-15 Leve", "Sub-16 Meio-Leve"},
	})
	if err != nil {
		t.Fatalf("SubmitForm returned error: %v", err)
	}
	if created != 2 {
		t.Fatalf("created = %d, want 2", created)
	}
	if len(f.regs.rows) != 2 {
		t.Fatalf("repo holds %d rows, want 2", len(f.regs.rows))
	}

	// The rows differ only in the categoria value.
	for i, row := range f.regs.rows {
		if row.Status != models.RegistrationDraft {
			t.Errorf("row %d status = %q, want draft", i, row.Status)
		}
		if row.FormData["nome"] != "Ana" || row.FormData["peso"] != "55" {
			t.Errorf("row %d form data = %v", i, row.FormData)
		}
	}
	if f.regs.rows[0].Category() != "Sub-15 Leve" || f.regs.rows[1].Category() != "Sub-16 Meio-Leve" {
		t.Errorf("categories = %q, %q", f.regs.rows[0].Category(), f.regs.rows[1].Category())
	}

	if f.athletes.written["nome"] != "Ana" || f.athletes.written["peso"] != 55.0 {
		t.Errorf("athlete write-back = %v", f.athletes.written)
	}
}

func TestSubmitFormSkipsCategoriesAlreadyHeld(t *testing.T) {
	f := newRegistrationFixture(openTestEvent())
	f.adhere(1)
	f.athletes.athletes[7] = &models.Athlete{ID: 7, AcademyID: intPtr(1)}

	input := SubmitFormInput{
		EventID: 10, AcademyID: 1, AthleteID: 7,
		Categories: []string{"Sub-15 Leve"},
	}
	if _, err := f.service.SubmitForm(context.Background(), f.staff, models.PanelAcademy, input); err != nil {
		t.Fatalf("first SubmitForm returned error: %v", err)
	}
	if _, err := f.service.SubmitForm(context.Background(), f.staff, models.PanelAcademy, input); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("repeat SubmitForm err = %v, want ErrValidationFailed", err)
	}
	if len(f.regs.rows) != 1 {
		t.Errorf("repo holds %d rows, want 1", len(f.regs.rows))
	}
}

func TestSubmitFormRejectsClosedEvent(t *testing.T) {
	event := openTestEvent()
	event.EndAt = time.Now().Add(-time.Hour)
	f := newRegistrationFixture(event)
	f.adhere(1)
	f.athletes.athletes[7] = &models.Athlete{ID: 7, AcademyID: intPtr(1)}

	_, err := f.service.SubmitForm(context.Background(), f.staff, models.PanelAcademy, SubmitFormInput{
		EventID: 10, AcademyID: 1, AthleteID: 7, Categories: []string{"Adulto"},
	})
	if !errors.Is(err, ErrEventClosed) {
		t.Errorf("err = %v, want ErrEventClosed", err)
	}
	if len(f.regs.rows) != 0 {
		t.Errorf("closed event still created %d rows", len(f.regs.rows))
	}
}

func TestSubmitFormRequiresAdhesion(t *testing.T) {
	f := newRegistrationFixture(openTestEvent())
	f.athletes.athletes[7] = &models.Athlete{ID: 7, AcademyID: intPtr(1)}

	_, err := f.service.SubmitForm(context.Background(), f.staff, models.PanelAcademy, SubmitFormInput{
		EventID: 10, AcademyID: 1, AthleteID: 7, Categories: []string{"Adulto"},
	})
	if !errors.Is(err, ErrAcademyNotAdhered) {
		t.Errorf("err = %v, want ErrAcademyNotAdhered", err)
	}
}

func TestSubmitBatchIsIdempotent(t *testing.T) {
	f := newRegistrationFixture(openTestEvent())
	f.adhere(1)
	f.athletes.athletes[7] = &models.Athlete{ID: 7, AcademyID: intPtr(1)}

	if _, err := f.service.SubmitForm(context.Background(), f.staff, models.PanelAcademy, SubmitFormInput{
		EventID: 10, AcademyID: 1, AthleteID: 7, Categories: []string{"Sub-15", "Sub-16"},
	}); err != nil {
		t.Fatalf("SubmitForm returned error: %v", err)
	}

	submitted, err := f.service.SubmitBatch(context.Background(), f.staff, models.PanelAcademy, 10, 1)
	if err != nil {
		t.Fatalf("SubmitBatch returned error: %v", err)
	}
	if submitted != 2 {
		t.Fatalf("submitted = %d, want 2", submitted)
	}

	var firstTimestamps []time.Time
	for _, row := range f.regs.rows {
		if row.Status != models.RegistrationSubmitted || row.SubmittedAt == nil {
			t.Fatalf("row %d not submitted: %+v", row.ID, row)
		}
		firstTimestamps = append(firstTimestamps, *row.SubmittedAt)
	}

	// A second call finds nothing to flip and leaves the rows untouched.
	if _, err := f.service.SubmitBatch(context.Background(), f.staff, models.PanelAcademy, 10, 1); !errors.Is(err, ErrNoRegistrations) {
		t.Fatalf("repeat SubmitBatch err = %v, want ErrNoRegistrations", err)
	}
	for i, row := range f.regs.rows {
		if !row.SubmittedAt.Equal(firstTimestamps[i]) {
			t.Errorf("row %d submitted_at changed on repeat call", row.ID)
		}
	}
}

func TestSubmitBatchRecalculatesPayment(t *testing.T) {
	event := openTestEvent()
	event.HasFee = true
	fee := 30.0
	event.SuggestedFee = &fee
	f := newRegistrationFixture(event)
	f.adhere(1)
	f.athletes.athletes[7] = &models.Athlete{ID: 7, AcademyID: intPtr(1)}

	if _, err := f.service.SubmitForm(context.Background(), f.staff, models.PanelAcademy, SubmitFormInput{
		EventID: 10, AcademyID: 1, AthleteID: 7, Categories: []string{"Sub-15", "Sub-16"},
	}); err != nil {
		t.Fatalf("SubmitForm returned error: %v", err)
	}
	if _, err := f.service.SubmitBatch(context.Background(), f.staff, models.PanelAcademy, 10, 1); err != nil {
		t.Fatalf("SubmitBatch returned error: %v", err)
	}

	payment, ok := f.payments.payments[[2]int{10, 1}]
	if !ok {
		t.Fatal("no payment row written")
	}
	if payment.ExpectedTotal != 60 {
		t.Errorf("ExpectedTotal = %v, want 60", payment.ExpectedTotal)
	}
	if payment.Status != models.PaymentPending {
		t.Errorf("Status = %q, want pendente", payment.Status)
	}
}

func TestEditRegistrationLockedAfterSubmit(t *testing.T) {
	f := newRegistrationFixture(openTestEvent())
	f.adhere(1)
	f.athletes.athletes[7] = &models.Athlete{ID: 7, AcademyID: intPtr(1)}

	if _, err := f.service.SubmitForm(context.Background(), f.staff, models.PanelAcademy, SubmitFormInput{
		EventID: 10, AcademyID: 1, AthleteID: 7, Categories: []string{"Adulto"},
	}); err != nil {
		t.Fatalf("SubmitForm returned error: %v", err)
	}
	regID := f.regs.rows[0].ID

	if err := f.service.EditRegistration(context.Background(), f.staff, models.PanelAcademy, regID, map[string]string{"peso": "60"}); err != nil {
		t.Fatalf("editing a draft returned error: %v", err)
	}

	if _, err := f.service.SubmitBatch(context.Background(), f.staff, models.PanelAcademy, 10, 1); err != nil {
		t.Fatalf("SubmitBatch returned error: %v", err)
	}

	if err := f.service.EditRegistration(context.Background(), f.staff, models.PanelAcademy, regID, map[string]string{"peso": "70"}); !errors.Is(err, ErrRegistrationLocked) {
		t.Errorf("editing a submitted row err = %v, want ErrRegistrationLocked", err)
	}
	if err := f.service.CancelRegistration(context.Background(), f.staff, models.PanelAcademy, regID); !errors.Is(err, ErrRegistrationLocked) {
		t.Errorf("cancelling a submitted row err = %v, want ErrRegistrationLocked", err)
	}
}

func TestIncludeWalkInUniqueness(t *testing.T) {
	f := newRegistrationFixture(openTestEvent())
	f.adhere(1)
	f.athletes.athletes[7] = &models.Athlete{ID: 7, AcademyID: intPtr(1)}

	reg, err := f.service.IncludeWalkIn(context.Background(), f.staff, models.PanelAcademy, 10, 1, 7)
	if err != nil {
		t.Fatalf("IncludeWalkIn returned error: %v", err)
	}
	if !reg.WalkIn || reg.Status != models.RegistrationDraft {
		t.Errorf("walk-in row = %+v", reg)
	}
	if len(reg.FormData) != 0 {
		t.Errorf("walk-in form data = %v, want empty", reg.FormData)
	}

	if _, err := f.service.IncludeWalkIn(context.Background(), f.staff, models.PanelAcademy, 10, 1, 7); !errors.Is(err, ErrWalkInAlreadyExists) {
		t.Errorf("repeat IncludeWalkIn err = %v, want ErrWalkInAlreadyExists", err)
	}
}

func TestSetAdhesionRejectsClosedEvent(t *testing.T) {
	event := openTestEvent()
	event.Status = models.EventFinalized
	f := newRegistrationFixture(event)

	scope := NewScopeService(&fakeUserRepo{}, &fakeTenantRepo{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	adhesionService := NewAdhesionService(f.adhesion, f.events, &fakeTenantRepo{}, scope, live.NewHub(logger))

	err := adhesionService.SetAdhesion(context.Background(), f.staff, models.PanelAcademy, 10, 1, true)
	if !errors.Is(err, ErrEventClosed) {
		t.Errorf("err = %v, want ErrEventClosed", err)
	}
}

func TestSetAdhesionIsIdempotent(t *testing.T) {
	event := openTestEvent()
	event.HasFee = true
	fee := 25.0
	event.SuggestedFee = &fee
	f := newRegistrationFixture(event)

	scope := NewScopeService(&fakeUserRepo{}, &fakeTenantRepo{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	adhesionService := NewAdhesionService(f.adhesion, f.events, &fakeTenantRepo{}, scope, live.NewHub(logger))

	for i := 0; i < 2; i++ {
		if err := adhesionService.SetAdhesion(context.Background(), f.staff, models.PanelAcademy, 10, 1, true); err != nil {
			t.Fatalf("SetAdhesion call %d returned error: %v", i+1, err)
		}
	}

	if len(f.adhesion.rows) != 1 {
		t.Fatalf("adhesion rows = %d, want 1", len(f.adhesion.rows))
	}
	row := f.adhesion.rows[[2]int{10, 1}]
	if !row.Adhered {
		t.Error("row not adhered")
	}
	if row.FeeValue == nil || *row.FeeValue != 25 {
		t.Errorf("FeeValue = %v, want suggested fee 25", row.FeeValue)
	}
}
