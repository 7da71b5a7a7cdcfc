package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/repositories"
	"github.com/fedsports/registration-system/utils"
)

// NoCategoryGroup labels registrations whose form data carries no category.
const NoCategoryGroup = "Sem categoria"

const (
	GroupByAcademy  = "academia"
	GroupByCategory = "categoria"
)

type ConsolidationOptions struct {
	GroupBy  string
	Columns  []string
	SortKey  string
	SortDesc bool
}

type ConsolidationColumn struct {
	Key   string `json:"campo"`
	Label string `json:"rotulo"`
}

type ConsolidatedRow struct {
	Registration models.Registration `json:"inscricao"`
	Cells        []string            `json:"valores"`
}

type ConsolidatedSubgroup struct {
	Key  string            `json:"chave"`
	Rows []ConsolidatedRow `json:"inscricoes"`
}

type ConsolidatedGroup struct {
	Key       string                 `json:"chave"`
	Subgroups []ConsolidatedSubgroup `json:"subgrupos"`
	Total     int                    `json:"total"`
}

type ConsolidationResult struct {
	Event           *models.Event         `json:"evento"`
	AssociationName string                `json:"associacao_nome"`
	GroupBy         string                `json:"agrupamento"`
	Columns         []ConsolidationColumn `json:"colunas"`
	Groups          []ConsolidatedGroup   `json:"grupos"`
	Total           int                   `json:"total"`
}

type ConsolidationService struct {
	registrationRepo repositories.RegistrationRepository
	eventRepo        repositories.EventRepository
	formRepo         repositories.FormRepository
	tenantRepo       repositories.TenantRepository
	scope            *ScopeService
	logger           *slog.Logger
}

func NewConsolidationService(
	registrationRepo repositories.RegistrationRepository,
	eventRepo repositories.EventRepository,
	formRepo repositories.FormRepository,
	tenantRepo repositories.TenantRepository,
	scope *ScopeService,
	logger *slog.Logger,
) *ConsolidationService {
	return &ConsolidationService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		formRepo:         formRepo,
		tenantRepo:       tenantRepo,
		scope:            scope,
		logger:           logger,
	}
}

// Consolidate reads every submitted registration of the event, projects the
// selected columns, sorts and groups them. Only the owning association can
// consolidate.
func (s *ConsolidationService) Consolidate(ctx context.Context, user *models.User, eventID int, opts ConsolidationOptions) (*ConsolidationResult, error) {
	associationID, err := s.scope.RequireAssociationManager(ctx, user)
	if err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.AssociationID != associationID && !user.HasRole(models.RoleAdmin) {
		return nil, ErrEventNotFound
	}

	formKeys, err := s.boundFormKeys(ctx, event)
	if err != nil {
		return nil, err
	}

	columns := s.effectiveColumns(ctx, event, opts.Columns, formKeys)

	registrations, err := s.registrationRepo.ListSubmittedByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	sortRegistrations(registrations, opts.SortKey, opts.SortDesc, formKeys)

	result := &ConsolidationResult{
		Event:   event,
		GroupBy: opts.GroupBy,
		Columns: make([]ConsolidationColumn, 0, len(columns)),
		Total:   len(registrations),
	}
	for _, key := range columns {
		result.Columns = append(result.Columns, ConsolidationColumn{Key: key, Label: models.FieldLabel(key)})
	}
	if association, err := s.tenantRepo.GetAssociation(ctx, event.AssociationID); err == nil {
		result.AssociationName = association.Name
	}

	if opts.GroupBy == GroupByCategory {
		result.Groups = groupRows(registrations, columns, categoryKey, academyKey)
	} else {
		result.GroupBy = GroupByAcademy
		result.Groups = groupRows(registrations, columns, academyKey, categoryKey)
	}
	return result, nil
}

// SaveExportConfig persists the association's preferred column layout on the
// event. Unknown keys are dropped rather than rejected.
func (s *ConsolidationService) SaveExportConfig(ctx context.Context, user *models.User, eventID int, cfg models.ExportConfig) error {
	associationID, err := s.scope.RequireAssociationManager(ctx, user)
	if err != nil {
		return err
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if event.AssociationID != associationID && !user.HasRole(models.RoleAdmin) {
		return ErrEventNotFound
	}

	kept := cfg.Fields[:0]
	for _, key := range cfg.Fields {
		if models.IsCatalogField(key) {
			kept = append(kept, key)
		}
	}
	cfg.Fields = kept

	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.eventRepo.UpdateExportConfig(ctx, eventID, string(raw))
}

// GetExportConfig loads the saved column layout of the event. Events without
// a saved config return an empty one.
func (s *ConsolidationService) GetExportConfig(ctx context.Context, user *models.User, eventID int) (*models.ExportConfig, error) {
	associationID, err := s.scope.RequireAssociationManager(ctx, user)
	if err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.AssociationID != associationID && !user.HasRole(models.RoleAdmin) {
		return nil, ErrEventNotFound
	}

	raw, err := s.eventRepo.GetExportConfig(ctx, eventID)
	if err != nil {
		return nil, err
	}
	cfg := &models.ExportConfig{}
	if raw != nil && *raw != "" {
		if err := json.Unmarshal([]byte(*raw), cfg); err != nil {
			s.logger.Warn("malformed export config ignored",
				slog.Int("event_id", eventID), slog.Any("error", err))
			*cfg = models.ExportConfig{}
		}
	}
	return cfg, nil
}

// boundFormKeys returns the field keys of the event's bound form, in form
// order. Events without a form have no keys.
func (s *ConsolidationService) boundFormKeys(ctx context.Context, event *models.Event) ([]string, error) {
	if event.FormID == nil {
		return nil, nil
	}
	form, err := s.formRepo.GetWithFields(ctx, *event.FormID)
	if err != nil {
		if errors.Is(err, repositories.ErrFormNotFound) {
			return nil, nil
		}
		return nil, err
	}
	keys := make([]string, 0, len(form.Fields))
	for _, f := range form.Fields {
		keys = append(keys, f.Key)
	}
	return keys, nil
}

// effectiveColumns resolves the column layout: explicit request, then the
// saved export config, then every bound form field. A malformed saved config
// is logged and skipped.
func (s *ConsolidationService) effectiveColumns(ctx context.Context, event *models.Event, requested, formKeys []string) []string {
	if len(requested) > 0 {
		return requested
	}
	if event.ExportConfigRaw != nil && *event.ExportConfigRaw != "" {
		var cfg models.ExportConfig
		if err := json.Unmarshal([]byte(*event.ExportConfigRaw), &cfg); err != nil {
			s.logger.Warn("malformed export config ignored",
				slog.Int("event_id", event.ID), slog.Any("error", err))
		} else if len(cfg.Fields) > 0 {
			return cfg.Fields
		}
	}
	return formKeys
}

// projectValue resolves one cell before formatting. Missing id_academia and
// nome fall back to the joined academy and athlete names; a walk-in without
// a form keeps a readable name this way.
func projectValue(reg *models.Registration, key string) string {
	value := ""
	if reg.FormData != nil {
		value = reg.FormData[key]
	}
	if value == "" {
		switch key {
		case "id_academia":
			value = reg.AcademyName
		case "nome":
			value = reg.AthleteName
		}
	}
	return value
}

// formatValue renders one cell: sex codes expand, dates print as
// DD/MM/YYYY, blanks become a dash.
func formatValue(key, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	if key == "sexo" {
		switch strings.ToUpper(value) {
		case "M", "MASCULINO":
			return "Masculino"
		case "F", "FEMININO":
			return "Feminino"
		}
		return value
	}
	if models.DateFieldKeys[key] {
		return utils.FormatDateBR(value)
	}
	return value
}

func buildRow(reg models.Registration, columns []string) ConsolidatedRow {
	cells := make([]string, len(columns))
	for i, key := range columns {
		cells[i] = formatValue(key, projectValue(&reg, key))
	}
	return ConsolidatedRow{Registration: reg, Cells: cells}
}

func academyKey(reg *models.Registration) string {
	if reg.AcademyName != "" {
		return reg.AcademyName
	}
	return strconv.Itoa(reg.AcademyID)
}

func categoryKey(reg *models.Registration) string {
	if c := reg.Category(); c != "" {
		return c
	}
	return NoCategoryGroup
}

// groupRows builds the two-level grouping, preserving the sorted row order
// inside every subgroup. Groups themselves come out in first-seen order.
func groupRows(registrations []models.Registration, columns []string, outer, inner func(*models.Registration) string) []ConsolidatedGroup {
	var groups []ConsolidatedGroup
	groupIndex := map[string]int{}
	subIndex := map[string]map[string]int{}

	for _, reg := range registrations {
		outerKey := outer(&reg)
		gi, ok := groupIndex[outerKey]
		if !ok {
			gi = len(groups)
			groupIndex[outerKey] = gi
			subIndex[outerKey] = map[string]int{}
			groups = append(groups, ConsolidatedGroup{Key: outerKey})
		}

		innerKey := inner(&reg)
		si, ok := subIndex[outerKey][innerKey]
		if !ok {
			si = len(groups[gi].Subgroups)
			subIndex[outerKey][innerKey] = si
			groups[gi].Subgroups = append(groups[gi].Subgroups, ConsolidatedSubgroup{Key: innerKey})
		}

		groups[gi].Subgroups[si].Rows = append(groups[gi].Subgroups[si].Rows, buildRow(reg, columns))
		groups[gi].Total++
	}
	return groups
}

// sortRegistrations orders rows for display. An unknown sort key falls back
// to (academy, athlete). Values that parse as numbers sort before text,
// text compares case-insensitively, desc reverses everything.
func sortRegistrations(registrations []models.Registration, key string, desc bool, formKeys []string) {
	valid := false
	for _, k := range formKeys {
		if k == key {
			valid = true
			break
		}
	}

	var less func(a, b *models.Registration) bool
	if !valid {
		less = func(a, b *models.Registration) bool {
			if a.AcademyName != b.AcademyName {
				return strings.ToLower(a.AcademyName) < strings.ToLower(b.AcademyName)
			}
			return strings.ToLower(a.AthleteName) < strings.ToLower(b.AthleteName)
		}
	} else {
		less = func(a, b *models.Registration) bool {
			return compareValues(projectValue(a, key), projectValue(b, key)) < 0
		}
	}

	sort.SliceStable(registrations, func(i, j int) bool {
		if desc {
			return less(&registrations[j], &registrations[i])
		}
		return less(&registrations[i], &registrations[j])
	})
}

func compareValues(a, b string) int {
	na, aNum := strconv.ParseFloat(strings.ReplaceAll(a, ",", "."), 64)
	nb, bNum := strconv.ParseFloat(strings.ReplaceAll(b, ",", "."), 64)
	switch {
	case aNum == nil && bNum == nil:
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	case aNum == nil:
		return -1
	case bNum == nil:
		return 1
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
