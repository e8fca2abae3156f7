package core

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-provision/saga"
)

// Service orchestrates account lifecycle operations against the remote
// platform, using the plan binding store to translate billing products into
// remote plan ids.
type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	persistenceClient any
	repositoryFactory any
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	client            PlatformClient
	bindingStore      PlanBindingStore
	now               func() time.Time
}

type ServiceDependencies struct {
	Logger           Logger
	LoggerProvider   LoggerProvider
	MetricsRecorder  MetricsRecorder
	ErrorFactory     ErrorFactory
	ErrorMapper      ErrorMapper
	ConfigProvider   ConfigProvider
	OptionsResolver  OptionsResolver
	PlatformClient   PlatformClient
	PlanBindingStore PlanBindingStore
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("provision", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("provision"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.now == nil {
		builder.now = time.Now
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.bindingStore == nil && builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			provider, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			if provider != nil {
				builder.bindingStore = provider.PlanBindingStore()
			}
		} else if provider, ok := builder.repositoryFactory.(StoreProvider); ok {
			builder.bindingStore = provider.PlanBindingStore()
		}
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		client:            builder.platformClient,
		bindingStore:      builder.bindingStore,
		now:               builder.now,
	}, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:           s.logger,
		LoggerProvider:   s.loggerProvider,
		MetricsRecorder:  s.metricsRecorder,
		ErrorFactory:     s.errorFactory,
		ErrorMapper:      s.errorMapper,
		ConfigProvider:   s.configProvider,
		OptionsResolver:  s.optionsResolver,
		PlatformClient:   s.client,
		PlanBindingStore: s.bindingStore,
	}
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s != nil && s.errorMapper != nil {
		if mapped := s.errorMapper(err); mapped != nil {
			return mapped
		}
	}
	return err
}

func (s *Service) requireClient() error {
	if s == nil || s.client == nil {
		return goerrors.New("core: platform client is not configured", goerrors.CategoryInternal).
			WithTextCode(ProvisionErrorInternal)
	}
	return nil
}

func (s *Service) requireBindingStore() error {
	if s == nil || s.bindingStore == nil {
		return goerrors.New("core: plan binding store is not configured", goerrors.CategoryInternal).
			WithTextCode(ProvisionErrorInternal)
	}
	return nil
}

// CreateAccount provisions a remote account for a billing service: it reuses
// the user matching the customer email or creates one, resolves the plan
// bound to the product, and purchases it. Any failure after a side effect
// rolls the side effects back in reverse order before returning.
func (s *Service) CreateAccount(ctx context.Context, req ProvisionRequest) (result ProvisionResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"service_id": req.ServiceID,
		"product_id": req.ProductID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "create_account", err, fields)
	}()

	if err = s.requireClient(); err != nil {
		return ProvisionResult{}, err
	}
	if err = s.requireBindingStore(); err != nil {
		return ProvisionResult{}, err
	}
	if err = req.Validate(); err != nil {
		err = s.mapError(err)
		return ProvisionResult{}, err
	}

	tx := NewTransaction(s.client, saga.WithLogger(s.logger), saga.WithNow(s.now))
	if err = tx.Begin(); err != nil {
		return ProvisionResult{}, s.mapError(err)
	}
	fields["transaction_id"] = tx.ID()

	rollbackAndMap := func(cause error) error {
		report := tx.Rollback(ctx)
		fields["rollback_attempted"] = report.Attempted
		fields["rollback_failed"] = report.Failed
		return s.mapError(cause)
	}

	user, found, lookupErr := s.client.FindUserByEmail(ctx, req.CustomerEmail)
	if lookupErr != nil {
		err = rollbackAndMap(lookupErr)
		return ProvisionResult{}, err
	}

	result.ExistingUser = found
	if found {
		result.UserID = user.ID
	} else {
		password := req.Password
		if strings.TrimSpace(password) == "" {
			password, err = GeneratePassword(s.config.Provisioning.PasswordLength)
			if err != nil {
				err = rollbackAndMap(err)
				return ProvisionResult{}, err
			}
		}
		username := strings.TrimSpace(req.Username)
		if username == "" {
			username = usernameFromEmail(req.CustomerEmail)
		}
		result.UserID, err = tx.CreateUser(ctx, CreateUserInput{
			Username: username,
			Password: password,
			Email:    req.CustomerEmail,
			Fullname: strings.TrimSpace(req.CustomerName),
			Source:   "billing",
		})
		if err != nil {
			err = rollbackAndMap(err)
			return ProvisionResult{}, err
		}
	}
	fields["user_id"] = result.UserID

	binding, found, bindingErr := s.bindingStore.GetByProductID(ctx, req.ProductID)
	if bindingErr != nil {
		err = rollbackAndMap(bindingErr)
		return ProvisionResult{}, err
	}
	if !found {
		err = rollbackAndMap(bindingMissingError(req.ProductID))
		return ProvisionResult{}, err
	}
	result.PlanID = binding.PlanID

	result.UserPlanID, err = tx.BuyUserPlan(ctx, BuyUserPlanInput{
		UserID:      result.UserID,
		PlanID:      binding.PlanID,
		Name:        planDisplayName(req, binding),
		DayTo:       FormatPlanDay(s.planValidityEnd(req)),
		CountMonths: s.config.Provisioning.CountMonths,
	})
	if err != nil {
		err = rollbackAndMap(err)
		return ProvisionResult{}, err
	}
	fields["user_plan_id"] = result.UserPlanID

	if err = tx.Commit(); err != nil {
		err = rollbackAndMap(err)
		return ProvisionResult{}, err
	}
	return result, nil
}

// SuspendAccount disables the bound plan of the service's user.
func (s *Service) SuspendAccount(ctx context.Context, req ProvisionRequest) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"service_id": req.ServiceID, "product_id": req.ProductID}
	defer func() {
		s.observeOperation(ctx, startedAt, "suspend_account", err, fields)
	}()

	plan, err := s.resolveBoundPlan(ctx, req, fields)
	if err != nil {
		return err
	}
	err = s.mapError(s.client.SuspendUserPlan(ctx, plan.ID))
	return err
}

// UnsuspendAccount re-enables the bound plan of the service's user.
func (s *Service) UnsuspendAccount(ctx context.Context, req ProvisionRequest) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"service_id": req.ServiceID, "product_id": req.ProductID}
	defer func() {
		s.observeOperation(ctx, startedAt, "unsuspend_account", err, fields)
	}()

	plan, err := s.resolveBoundPlan(ctx, req, fields)
	if err != nil {
		return err
	}
	err = s.mapError(s.client.ResumeUserPlan(ctx, plan.ID))
	return err
}

// RenewAccount extends the bound plan's validity to the next due date,
// preserving the plan id, display name, and enabled state.
func (s *Service) RenewAccount(ctx context.Context, req ProvisionRequest) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"service_id": req.ServiceID, "product_id": req.ProductID}
	defer func() {
		s.observeOperation(ctx, startedAt, "renew_account", err, fields)
	}()

	plan, err := s.resolveBoundPlan(ctx, req, fields)
	if err != nil {
		return err
	}
	err = s.mapError(s.client.RenewUserPlan(ctx, plan.ID, FormatPlanDay(s.planValidityEnd(req))))
	return err
}

// TerminateAccount removes the bound plan. The remote user is retained so
// other services on the same email keep working. Termination of an already
// absent user or plan succeeds.
func (s *Service) TerminateAccount(ctx context.Context, req ProvisionRequest) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"service_id": req.ServiceID, "product_id": req.ProductID}
	defer func() {
		s.observeOperation(ctx, startedAt, "terminate_account", err, fields)
	}()

	if err = s.requireClient(); err != nil {
		return err
	}
	if err = s.requireBindingStore(); err != nil {
		return err
	}
	if err = req.Validate(); err != nil {
		err = s.mapError(err)
		return err
	}

	user, found, lookupErr := s.client.FindUserByEmail(ctx, req.CustomerEmail)
	if lookupErr != nil {
		err = s.mapError(lookupErr)
		return err
	}
	if !found {
		return nil
	}
	fields["user_id"] = user.ID

	binding, found, bindingErr := s.bindingStore.GetByProductID(ctx, req.ProductID)
	if bindingErr != nil {
		err = s.mapError(bindingErr)
		return err
	}
	if !found {
		err = s.mapError(bindingMissingError(req.ProductID))
		return err
	}

	plan, found, planErr := s.client.FindUserPlanByPlanID(ctx, user.ID, binding.PlanID)
	if planErr != nil {
		err = s.mapError(planErr)
		return err
	}
	if !found {
		return nil
	}
	fields["user_plan_id"] = plan.ID

	err = s.mapError(s.client.DeleteUserPlan(ctx, plan.ID))
	return err
}

// ChangePlan buys the plan bound to the new product under a saga, then
// removes the plan bound to the previous product. A failure removing the old
// plan rolls the new purchase back.
func (s *Service) ChangePlan(ctx context.Context, req ChangePlanRequest) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"service_id":          req.ServiceID,
		"product_id":          req.ProductID,
		"previous_product_id": req.PreviousProductID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "change_plan", err, fields)
	}()

	if err = s.requireClient(); err != nil {
		return err
	}
	if err = s.requireBindingStore(); err != nil {
		return err
	}
	if err = req.Validate(); err != nil {
		err = s.mapError(err)
		return err
	}

	user, found, lookupErr := s.client.FindUserByEmail(ctx, req.CustomerEmail)
	if lookupErr != nil {
		err = s.mapError(lookupErr)
		return err
	}
	if !found {
		err = s.mapError(goerrors.New("core: user not found for plan change", goerrors.CategoryNotFound).
			WithTextCode(ProvisionErrorNotFound).
			WithMetadata(map[string]any{"email": req.CustomerEmail}))
		return err
	}
	fields["user_id"] = user.ID

	newBinding, found, bindingErr := s.bindingStore.GetByProductID(ctx, req.ProductID)
	if bindingErr != nil {
		err = s.mapError(bindingErr)
		return err
	}
	if !found {
		err = s.mapError(bindingMissingError(req.ProductID))
		return err
	}

	var oldPlanID int64
	if strings.TrimSpace(req.PreviousProductID) != "" {
		if oldBinding, ok, oldErr := s.bindingStore.GetByProductID(ctx, req.PreviousProductID); oldErr == nil && ok {
			if plan, planFound, planErr := s.client.FindUserPlanByPlanID(ctx, user.ID, oldBinding.PlanID); planErr == nil && planFound {
				oldPlanID = plan.ID
			}
		}
	}

	tx := NewTransaction(s.client, saga.WithLogger(s.logger), saga.WithNow(s.now))
	if err = tx.Begin(); err != nil {
		return s.mapError(err)
	}
	fields["transaction_id"] = tx.ID()

	newPlanID, buyErr := tx.BuyUserPlan(ctx, BuyUserPlanInput{
		UserID:      user.ID,
		PlanID:      newBinding.PlanID,
		Name:        planDisplayName(req.ProvisionRequest, newBinding),
		DayTo:       FormatPlanDay(s.planValidityEnd(req.ProvisionRequest)),
		CountMonths: s.config.Provisioning.CountMonths,
	})
	if buyErr != nil {
		report := tx.Rollback(ctx)
		fields["rollback_attempted"] = report.Attempted
		err = s.mapError(buyErr)
		return err
	}
	fields["user_plan_id"] = newPlanID

	if oldPlanID > 0 {
		if deleteErr := s.client.DeleteUserPlan(ctx, oldPlanID); deleteErr != nil {
			report := tx.Rollback(ctx)
			fields["rollback_attempted"] = report.Attempted
			err = s.mapError(deleteErr)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return s.mapError(err)
	}
	return nil
}

// TestConnection verifies credentials and reachability of the platform API.
func (s *Service) TestConnection(ctx context.Context) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observeOperation(ctx, startedAt, "test_connection", err, nil)
	}()

	if err = s.requireClient(); err != nil {
		return err
	}
	err = s.mapError(s.client.Ping(ctx))
	return err
}

// Overview returns the remote user and plans for a customer email.
func (s *Service) Overview(ctx context.Context, email string) (overview AccountOverview, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "account_overview", err, fields)
	}()

	if err = s.requireClient(); err != nil {
		return AccountOverview{}, err
	}
	user, found, lookupErr := s.client.FindUserByEmail(ctx, email)
	if lookupErr != nil {
		err = s.mapError(lookupErr)
		return AccountOverview{}, err
	}
	if !found {
		err = s.mapError(goerrors.New("core: user not found", goerrors.CategoryNotFound).
			WithTextCode(ProvisionErrorNotFound).
			WithMetadata(map[string]any{"email": email}))
		return AccountOverview{}, err
	}
	fields["user_id"] = user.ID

	plans, plansErr := s.client.ListUserPlans(ctx, user.ID)
	if plansErr != nil {
		err = s.mapError(plansErr)
		return AccountOverview{}, err
	}
	return AccountOverview{User: user, Plans: plans}, nil
}

// UpsertPlanBinding creates or replaces the binding between a billing product
// and a remote plan.
func (s *Service) UpsertPlanBinding(ctx context.Context, in UpsertPlanBindingInput) (binding PlanBinding, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"product_id": in.ProductID}
	defer func() {
		s.observeOperation(ctx, startedAt, "upsert_plan_binding", err, fields)
	}()

	if err = s.requireBindingStore(); err != nil {
		return PlanBinding{}, err
	}
	if err = in.Validate(); err != nil {
		err = s.mapError(err)
		return PlanBinding{}, err
	}
	binding, storeErr := s.bindingStore.Upsert(ctx, in)
	if storeErr != nil {
		err = s.mapError(storeErr)
		return PlanBinding{}, err
	}
	return binding, nil
}

func (s *Service) DeletePlanBinding(ctx context.Context, productID string) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"product_id": productID}
	defer func() {
		s.observeOperation(ctx, startedAt, "delete_plan_binding", err, fields)
	}()

	if err = s.requireBindingStore(); err != nil {
		return err
	}
	err = s.mapError(s.bindingStore.Delete(ctx, productID))
	return err
}

func (s *Service) ListPlanBindings(ctx context.Context) (bindings []PlanBinding, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observeOperation(ctx, startedAt, "list_plan_bindings", err, nil)
	}()

	if err = s.requireBindingStore(); err != nil {
		return nil, err
	}
	bindings, storeErr := s.bindingStore.List(ctx)
	if storeErr != nil {
		err = s.mapError(storeErr)
		return nil, err
	}
	return bindings, nil
}

// ListAvailablePlans returns the remote plan catalog for binding products.
func (s *Service) ListAvailablePlans(ctx context.Context) (plans []Plan, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observeOperation(ctx, startedAt, "list_available_plans", err, nil)
	}()

	if err = s.requireClient(); err != nil {
		return nil, err
	}
	plans, clientErr := s.client.ListAvailablePlans(ctx)
	if clientErr != nil {
		err = s.mapError(clientErr)
		return nil, err
	}
	return plans, nil
}

// resolveBoundPlan finds the user by email and the user plan matching the
// product's bound plan id. Both must exist.
func (s *Service) resolveBoundPlan(ctx context.Context, req ProvisionRequest, fields map[string]any) (UserPlan, error) {
	if err := s.requireClient(); err != nil {
		return UserPlan{}, err
	}
	if err := s.requireBindingStore(); err != nil {
		return UserPlan{}, err
	}
	if err := req.Validate(); err != nil {
		return UserPlan{}, s.mapError(err)
	}

	user, found, err := s.client.FindUserByEmail(ctx, req.CustomerEmail)
	if err != nil {
		return UserPlan{}, s.mapError(err)
	}
	if !found {
		return UserPlan{}, s.mapError(goerrors.New("core: user not found", goerrors.CategoryNotFound).
			WithTextCode(ProvisionErrorNotFound).
			WithMetadata(map[string]any{"email": req.CustomerEmail}))
	}
	fields["user_id"] = user.ID

	binding, found, err := s.bindingStore.GetByProductID(ctx, req.ProductID)
	if err != nil {
		return UserPlan{}, s.mapError(err)
	}
	if !found {
		return UserPlan{}, s.mapError(bindingMissingError(req.ProductID))
	}

	plan, found, err := s.client.FindUserPlanByPlanID(ctx, user.ID, binding.PlanID)
	if err != nil {
		return UserPlan{}, s.mapError(err)
	}
	if !found {
		return UserPlan{}, s.mapError(goerrors.New("core: user plan not found", goerrors.CategoryNotFound).
			WithTextCode(ProvisionErrorNotFound).
			WithMetadata(map[string]any{"user_id": user.ID, "plan_id": binding.PlanID}))
	}
	fields["user_plan_id"] = plan.ID
	return plan, nil
}

func (s *Service) planValidityEnd(req ProvisionRequest) time.Time {
	if !req.NextDueDate.IsZero() {
		return req.NextDueDate.UTC()
	}
	return s.now().UTC().AddDate(0, 1, 0)
}

func planDisplayName(req ProvisionRequest, binding PlanBinding) string {
	name := strings.TrimSpace(req.ProductName)
	if name == "" {
		name = strings.TrimSpace(binding.ProductName)
	}
	customer := strings.TrimSpace(req.CustomerName)
	switch {
	case name != "" && customer != "":
		return name + " - " + customer
	case name != "":
		return name
	case customer != "":
		return customer
	default:
		return "Plan"
	}
}

func bindingMissingError(productID string) error {
	return goerrors.New("core: no plan binding for product", goerrors.CategoryNotFound).
		WithTextCode(ProvisionErrorBindingMissing).
		WithMetadata(map[string]any{"product_id": productID})
}

func usernameFromEmail(email string) string {
	email = strings.TrimSpace(email)
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
