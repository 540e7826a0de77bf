package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"licensedesk.com/licensedesk/licensing/model"
)

// ProgramNamePolicy decides when a serial receives its program name.
type ProgramNamePolicy string

const (
	// ProgramNameAtCreation requires the program name when the serial is
	// created; bind requests may only repeat it.
	ProgramNameAtCreation ProgramNamePolicy = "creation"
	// ProgramNameAtActivation creates bare serials; the first bind request
	// must name the program.
	ProgramNameAtActivation ProgramNamePolicy = "activation"
)

func ParseProgramNamePolicy(value string) (ProgramNamePolicy, error) {
	switch ProgramNamePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case ProgramNameAtCreation, "":
		return ProgramNameAtCreation, nil
	case ProgramNameAtActivation:
		return ProgramNameAtActivation, nil
	}
	return "", fmt.Errorf("unknown program name policy %q", value)
}

// Check statuses reported instead of the administrative status.
const (
	CheckStatusNotFound            = "not found"
	CheckStatusDeviceMismatch      = "device mismatch"
	CheckStatusProgramMismatch     = "program mismatch"
	CheckStatusProgramNameRequired = "program name required"
)

type EventKind string

const (
	EventBound          EventKind = "bound"
	EventReset          EventKind = "reset"
	EventDeviceMismatch EventKind = "device_mismatch"
)

type Event struct {
	Kind           EventKind
	SerialNumber   string
	DeviceID       string
	ExpectedDevice string
	At             time.Time
}

// Notifier is told about transitions after they are persisted.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Observer counts check outcomes and transitions.
type Observer interface {
	ObserveCheck(outcome string)
	ObserveTransition(kind EventKind)
}

type CheckRequest struct {
	Serial      string
	DeviceID    string
	ProgramName string
}

type CheckResult struct {
	Found          bool       `json:"found"`
	Valid          bool       `json:"valid"`
	Status         string     `json:"status"`
	Active         *bool      `json:"active,omitempty"`
	SerialNumber   string     `json:"serial_number,omitempty"`
	ProgramName    string     `json:"program_name,omitempty"`
	DeviceID       string     `json:"device_id,omitempty"`
	ActivationDate *time.Time `json:"activation_date,omitempty"`
}

type ActivateRequest struct {
	Serial      string
	DeviceID    string
	ProgramName string
}

type GenerateInput struct {
	ProgramName *string
	Status      model.Status
	Notes       *string
}

type Activator struct {
	store    Store
	policy   ProgramNamePolicy
	notifier Notifier
	observer Observer
	log      *zap.Logger
	now      func() time.Time
}

type Option func(*Activator)

func WithNotifier(n Notifier) Option { return func(a *Activator) { a.notifier = n } }

func WithObserver(o Observer) Option { return func(a *Activator) { a.observer = o } }

func WithLogger(l *zap.Logger) Option { return func(a *Activator) { a.log = l } }

func NewActivator(store Store, policy ProgramNamePolicy, opts ...Option) *Activator {
	a := &Activator{
		store:  store,
		policy: policy,
		log:    zap.NewNop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	if a.policy == "" {
		a.policy = ProgramNameAtCreation
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Activator) Policy() ProgramNamePolicy {
	return a.policy
}

// Check is the public check endpoint. Unknown serials, mismatches and policy
// violations are reported in the result; only storage faults return an error.
func (a *Activator) Check(ctx context.Context, req CheckRequest) (CheckResult, error) {
	serial := strings.TrimSpace(req.Serial)
	device := strings.TrimSpace(req.DeviceID)
	if serial == "" {
		return a.checkOutcome(notFoundResult()), nil
	}

	license, err := a.store.GetBySerial(ctx, serial)
	if err != nil {
		return CheckResult{}, err
	}
	if license == nil {
		return a.checkOutcome(notFoundResult()), nil
	}

	// no device asserted: read-only probe
	if device == "" {
		return a.checkOutcome(stateResult(license)), nil
	}

	programName := strings.TrimSpace(req.ProgramName)
	bound, err := a.bind(ctx, license, device, programName)
	switch {
	case err == nil:
		return a.checkOutcome(stateResult(bound)), nil
	case errors.Is(err, ErrNotFound):
		return a.checkOutcome(notFoundResult()), nil
	case errors.Is(err, ErrAlreadyBound):
		return a.checkOutcome(mismatchResult(bound)), nil
	case errors.Is(err, ErrNotActivatable):
		return a.checkOutcome(stateResult(license)), nil
	case errors.Is(err, ErrInvalidInput):
		res := stateResult(license)
		res.Valid = false
		res.Status = CheckStatusProgramMismatch
		if programName == "" {
			res.Status = CheckStatusProgramNameRequired
		}
		return a.checkOutcome(res), nil
	}
	return CheckResult{}, err
}

// Activate binds serial to a device and reports failures as errors.
// Re-activating with the bound device is a confirm and returns the record.
func (a *Activator) Activate(ctx context.Context, req ActivateRequest) (*model.License, error) {
	serial := strings.TrimSpace(req.Serial)
	device := strings.TrimSpace(req.DeviceID)
	if serial == "" || device == "" {
		return nil, fmt.Errorf("%w: serial_number and device_id are required", ErrInvalidInput)
	}

	license, err := a.store.GetBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	if license == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, serial)
	}

	bound, err := a.bind(ctx, license, device, strings.TrimSpace(req.ProgramName))
	if err != nil {
		return nil, err
	}
	return bound, nil
}

// bind applies Bind or Confirm to license. On ErrAlreadyBound the returned
// record is the current one, bound to the other device.
func (a *Activator) bind(ctx context.Context, license *model.License, device, programName string) (*model.License, error) {
	if license.IsBound() {
		return a.confirm(ctx, license, device, programName)
	}
	if license.Status != model.StatusValid {
		return nil, fmt.Errorf("%w: status is %s", ErrNotActivatable, license.Status)
	}
	if err := a.checkProgram(license, programName); err != nil {
		return nil, err
	}

	var program *string
	if a.policy == ProgramNameAtActivation {
		program = &programName
	}

	bound, err := a.store.AtomicallyBind(ctx, license.SerialNumber, device, program)
	if err != nil {
		return nil, err
	}
	if bound == nil {
		// lost a race: another request bound, reset or removed the serial
		current, err := a.store.GetBySerial(ctx, license.SerialNumber)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, license.SerialNumber)
		}
		if current.IsBound() {
			return a.confirm(ctx, current, device, programName)
		}
		return nil, fmt.Errorf("%w: status is %s", ErrNotActivatable, current.Status)
	}

	a.log.Info("license bound",
		zap.String("serial", bound.SerialNumber),
		zap.String("device", device),
	)
	a.emit(ctx, Event{Kind: EventBound, SerialNumber: bound.SerialNumber, DeviceID: device, At: a.now()})
	return bound, nil
}

// checkProgram applies the program name policy to a bind or confirm request.
// Once a license carries a program name, a request naming another program is
// rejected under either policy.
func (a *Activator) checkProgram(license *model.License, programName string) error {
	if a.policy == ProgramNameAtActivation && license.ProgramName == nil {
		if programName == "" {
			return fmt.Errorf("%w: program_name is required to activate", ErrInvalidInput)
		}
		return nil
	}
	if programName != "" && (license.ProgramName == nil || *license.ProgramName != programName) {
		return fmt.Errorf("%w: program_name does not match the license", ErrInvalidInput)
	}
	return nil
}

func (a *Activator) confirm(ctx context.Context, license *model.License, device, programName string) (*model.License, error) {
	if *license.DeviceID == device {
		if err := a.checkProgram(license, programName); err != nil {
			return nil, err
		}
		return license, nil
	}
	a.log.Warn("device mismatch",
		zap.String("serial", license.SerialNumber),
		zap.String("device", device),
	)
	a.emit(ctx, Event{
		Kind:           EventDeviceMismatch,
		SerialNumber:   license.SerialNumber,
		DeviceID:       device,
		ExpectedDevice: *license.DeviceID,
		At:             a.now(),
	})
	return license, fmt.Errorf("%w: %s", ErrAlreadyBound, license.SerialNumber)
}

// Reset unbinds the serial so it can be activated on another device.
// Resetting an unbound serial changes nothing.
func (a *Activator) Reset(ctx context.Context, serial string) (*model.License, error) {
	current, err := a.Get(ctx, serial)
	if err != nil {
		return nil, err
	}
	if !current.IsBound() {
		return current, nil
	}

	license, err := a.store.ResetBinding(ctx, current.SerialNumber)
	if err != nil {
		return nil, err
	}
	if license == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, serial)
	}
	a.log.Info("license reset", zap.String("serial", license.SerialNumber))
	a.emit(ctx, Event{Kind: EventReset, SerialNumber: license.SerialNumber, At: a.now()})
	return license, nil
}

func (a *Activator) Get(ctx context.Context, serial string) (*model.License, error) {
	license, err := a.store.GetBySerial(ctx, strings.TrimSpace(serial))
	if err != nil {
		return nil, err
	}
	if license == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, serial)
	}
	return license, nil
}

func (a *Activator) List(ctx context.Context, filter ListFilter) ([]model.License, int64, error) {
	if filter.Status != "" && !filter.Status.IsKnown() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, filter.Status)
	}
	return a.store.ListAll(ctx, filter)
}

// Create adds a license. A binding present in input is written with the
// record in the same insert.
func (a *Activator) Create(ctx context.Context, input CreateInput) (*model.License, error) {
	input.SerialNumber = strings.TrimSpace(input.SerialNumber)
	if input.SerialNumber == "" {
		return nil, fmt.Errorf("%w: serial_number is required", ErrInvalidInput)
	}
	if err := a.checkCreate(&input); err != nil {
		return nil, err
	}
	return a.store.CreateSerial(ctx, input)
}

// Generate creates a license under a freshly generated serial.
func (a *Activator) Generate(ctx context.Context, input GenerateInput) (*model.License, error) {
	create := CreateInput{ProgramName: input.ProgramName, Status: input.Status, Notes: input.Notes}
	if err := a.checkCreate(&create); err != nil {
		return nil, err
	}

	const attempts = 5
	for i := 0; i < attempts; i++ {
		serial, err := GenerateSerial()
		if err != nil {
			return nil, err
		}
		create.SerialNumber = serial
		license, err := a.store.CreateSerial(ctx, create)
		if errors.Is(err, ErrConflict) {
			continue
		}
		return license, err
	}
	return nil, fmt.Errorf("%w: could not generate a unique serial", ErrConflict)
}

func (a *Activator) checkCreate(input *CreateInput) error {
	if input.Status == "" {
		input.Status = model.StatusValid
	}
	if !input.Status.IsKnown() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, input.Status)
	}

	if input.DeviceID != nil && strings.TrimSpace(*input.DeviceID) == "" {
		input.DeviceID = nil
	}
	bound := input.DeviceID != nil
	if bound != (input.ActivationDate != nil) {
		return fmt.Errorf("%w: device_id and activation_date must be set together", ErrInvalidInput)
	}
	if bound {
		device := strings.TrimSpace(*input.DeviceID)
		activated := input.ActivationDate.UTC()
		input.DeviceID, input.ActivationDate = &device, &activated
	}

	hasProgram := input.ProgramName != nil && strings.TrimSpace(*input.ProgramName) != ""
	switch a.policy {
	case ProgramNameAtActivation:
		if bound {
			// a restored binding carries the program it was activated with
			if !hasProgram {
				return fmt.Errorf("%w: program_name is required for a bound license", ErrInvalidInput)
			}
			name := strings.TrimSpace(*input.ProgramName)
			input.ProgramName = &name
			return nil
		}
		if hasProgram {
			return fmt.Errorf("%w: program_name is assigned at activation", ErrInvalidInput)
		}
		input.ProgramName = nil
	default:
		if !hasProgram {
			return fmt.Errorf("%w: program_name is required", ErrInvalidInput)
		}
		name := strings.TrimSpace(*input.ProgramName)
		input.ProgramName = &name
	}
	return nil
}

func (a *Activator) Update(ctx context.Context, serial string, patch model.LicensePatch) (*model.License, error) {
	if patch.Status != nil && !patch.Status.IsKnown() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *patch.Status)
	}
	if patch.ProgramName != nil && strings.TrimSpace(*patch.ProgramName) == "" {
		return nil, fmt.Errorf("%w: program_name cannot be empty", ErrInvalidInput)
	}
	license, err := a.store.UpdateFields(ctx, strings.TrimSpace(serial), patch)
	if err != nil {
		return nil, err
	}
	if license == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, serial)
	}
	return license, nil
}

func (a *Activator) Delete(ctx context.Context, serial string) error {
	deleted, err := a.store.DeleteBySerial(ctx, strings.TrimSpace(serial))
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", ErrNotFound, serial)
	}
	return nil
}

func (a *Activator) emit(ctx context.Context, event Event) {
	if a.observer != nil {
		a.observer.ObserveTransition(event.Kind)
	}
	if a.notifier == nil {
		return
	}
	if err := a.notifier.Notify(ctx, event); err != nil {
		a.log.Error("failed to notify", zap.String("event", string(event.Kind)), zap.Error(err))
	}
}

func (a *Activator) checkOutcome(res CheckResult) CheckResult {
	if a.observer != nil {
		outcome := "invalid"
		switch {
		case !res.Found:
			outcome = "not_found"
		case res.Status == CheckStatusDeviceMismatch:
			outcome = "device_mismatch"
		case res.Valid:
			outcome = "valid"
		}
		a.observer.ObserveCheck(outcome)
	}
	return res
}

func notFoundResult() CheckResult {
	return CheckResult{Found: false, Valid: false, Status: CheckStatusNotFound}
}

func stateResult(l *model.License) CheckResult {
	active := l.Active
	res := CheckResult{
		Found:          true,
		Valid:          l.IsValid(),
		Status:         string(l.Status),
		Active:         &active,
		SerialNumber:   l.SerialNumber,
		ActivationDate: l.ActivationDate,
	}
	if l.ProgramName != nil {
		res.ProgramName = *l.ProgramName
	}
	if l.DeviceID != nil {
		res.DeviceID = *l.DeviceID
	}
	return res
}

func mismatchResult(l *model.License) CheckResult {
	res := CheckResult{
		Found:        true,
		Valid:        false,
		Status:       CheckStatusDeviceMismatch,
		SerialNumber: l.SerialNumber,
	}
	if l.ProgramName != nil {
		res.ProgramName = *l.ProgramName
	}
	if l.DeviceID != nil {
		res.DeviceID = *l.DeviceID
	}
	return res
}
