package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bananagen/bananagen/internal/db/models"
	"github.com/bananagen/bananagen/internal/db/repos"
	"github.com/bananagen/bananagen/internal/gommo"
)

// fakeGateway is an in-memory Gateway substitute. Each created job gets a
// sequential correlation ID; checks answer from the programmed results map.
type fakeGateway struct {
	mu sync.Mutex

	createErr   error
	createCalls int
	nextID      int
	createdBy   map[string]string // correlation id -> api key used

	checkErr    error
	checkCalls  int
	checkResult map[string]*gommo.ImageInfo
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		createdBy:   make(map[string]string),
		checkResult: make(map[string]*gommo.ImageInfo),
	}
}

func (g *fakeGateway) CreateImage(_ context.Context, opts gommo.CallOptions, req gommo.CreateImageRequest) (*gommo.ImageInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.nextID++
	id := fmt.Sprintf("gommo-%d", g.nextID)
	g.createdBy[id] = opts.APIKey
	return &gommo.ImageInfo{IDBase: id, Status: gommo.StatusPending, Prompt: req.Prompt}, nil
}

func (g *fakeGateway) CheckImage(_ context.Context, _ gommo.CallOptions, idBase string) (*gommo.ImageInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkCalls++
	if g.checkErr != nil {
		return nil, g.checkErr
	}
	if info, ok := g.checkResult[idBase]; ok {
		return info, nil
	}
	return &gommo.ImageInfo{IDBase: idBase, Status: gommo.StatusProcessing}, nil
}

func (g *fakeGateway) ListModels(_ context.Context, _ gommo.CallOptions) ([]gommo.Model, error) {
	return []gommo.Model{{IDBase: "banana-default", Name: "Banana Default"}}, nil
}

type DispatcherTestSuite struct {
	suite.Suite
	ctx         context.Context
	db          *gorm.DB
	taskRepo    *repos.TaskRepository
	accountRepo *repos.AccountRepository
	userRepo    *repos.UserRepository
	gateway     *fakeGateway
	dispatcher  *Dispatcher
	user        *models.User
}

func (s *DispatcherTestSuite) SetupTest() {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(&models.User{}, &models.ProviderAccount{}, &models.GenerationTask{}))

	s.ctx = context.Background()
	s.db = db
	s.taskRepo = repos.NewTaskRepository(db)
	s.accountRepo = repos.NewAccountRepository(db)
	s.userRepo = repos.NewUserRepository(db)
	s.gateway = newFakeGateway()
	s.dispatcher = NewDispatcher(s.taskRepo, s.accountRepo, s.userRepo, s.gateway)

	s.user = &models.User{Email: "tester@example.com", Password: "hash"}
	s.Require().NoError(s.userRepo.Create(s.ctx, s.user))
}

func (s *DispatcherTestSuite) createAccount(name string, accountType models.AccountType, priority, limit int) *models.ProviderAccount {
	account := &models.ProviderAccount{
		Name:             name,
		APIKey:           "key-" + name,
		Type:             accountType,
		Priority:         priority,
		ConcurrencyLimit: limit,
	}
	s.Require().NoError(s.accountRepo.Create(s.ctx, account))
	return account
}

func (s *DispatcherTestSuite) submit(prompt string) *models.GenerationTask {
	task, err := s.dispatcher.Submit(s.ctx, s.user.ID, SubmitRequest{Prompt: prompt})
	s.Require().NoError(err)
	return task
}

func (s *DispatcherTestSuite) TestSubmitDispatchesImmediately() {
	account := s.createAccount("primary", models.AccountTypeUnlimited, 1, 2)

	task := s.submit("a banana riding a bike")

	s.Require().Equal(models.TaskStatusProcessing, task.Status)
	s.Require().NotNil(task.ProviderAccountID)
	s.Require().Equal(account.ID, *task.ProviderAccountID)
	s.Require().NotNil(task.ProviderTaskID)
	s.Require().NotNil(task.StartedAt)
	s.Require().Equal(0, task.CostIncurred)

	updatedAccount, err := s.accountRepo.GetByID(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Require().Equal(int64(1), updatedAccount.TotalUsage)

	user, err := s.userRepo.GetByID(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.DefaultCreditBalance-models.DefaultCostToUser, user.CreditBalance)
}

func (s *DispatcherTestSuite) TestSubmitInsufficientCredits() {
	s.createAccount("primary", models.AccountTypeUnlimited, 1, 2)
	poor := &models.User{Email: "poor@example.com", Password: "hash", CreditBalance: models.DefaultCostToUser - 1}
	s.Require().NoError(s.userRepo.Create(s.ctx, poor))

	_, err := s.dispatcher.Submit(s.ctx, poor.ID, SubmitRequest{Prompt: "anything"})
	s.Require().ErrorIs(err, ErrInsufficientCredits)

	tasks, err := s.taskRepo.ListByUser(s.ctx, poor.ID, nil)
	s.Require().NoError(err)
	s.Require().Empty(tasks)
}

func (s *DispatcherTestSuite) TestSubmitWithEmptyPoolStaysPending() {
	task := s.submit("no capacity anywhere")

	s.Require().Equal(models.TaskStatusPending, task.Status)
	s.Require().Nil(task.ProviderAccountID)
	s.Require().Zero(s.gateway.createCalls)
}

func (s *DispatcherTestSuite) TestAttemptIsIdempotentOnNonPending() {
	s.createAccount("primary", models.AccountTypeUnlimited, 1, 2)
	task := s.submit("once")
	s.Require().Equal(models.TaskStatusProcessing, task.Status)
	calls := s.gateway.createCalls

	again, err := s.dispatcher.Attempt(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Require().Equal(task.Status, again.Status)
	s.Require().Equal(*task.ProviderTaskID, *again.ProviderTaskID)
	s.Require().Equal(calls, s.gateway.createCalls)
}

func (s *DispatcherTestSuite) TestSaturationSpillsToMetered() {
	flat := s.createAccount("flat", models.AccountTypeUnlimited, 1, 1)
	overflow := s.createAccount("overflow", models.AccountTypePayAsYouGo, 2, 0)

	task1 := s.submit("first")
	s.Require().Equal(flat.ID, *task1.ProviderAccountID)
	s.Require().Equal(0, task1.CostIncurred)

	task2 := s.submit("second")
	s.Require().Equal(overflow.ID, *task2.ProviderAccountID)
	s.Require().Equal(meteredDispatchCost, task2.CostIncurred)

	// Still saturated: third task also lands on the metered account.
	task3 := s.submit("third")
	s.Require().Equal(overflow.ID, *task3.ProviderAccountID)
}

func (s *DispatcherTestSuite) TestSaturatedPoolWithoutMeteredStaysPending() {
	flat := s.createAccount("flat", models.AccountTypeUnlimited, 1, 1)

	task1 := s.submit("occupies the slot")
	s.Require().Equal(models.TaskStatusProcessing, task1.Status)

	task2 := s.submit("has to wait")
	s.Require().Equal(models.TaskStatusPending, task2.Status)

	// Completing the first task frees the slot, the next poll dispatches.
	s.gateway.checkResult[*task1.ProviderTaskID] = &gommo.ImageInfo{
		IDBase: *task1.ProviderTaskID,
		Status: gommo.StatusSuccess,
		URL:    "https://img.example/1.png",
	}
	done, err := s.dispatcher.Reconcile(s.ctx, task1.UUID)
	s.Require().NoError(err)
	s.Require().Equal(models.TaskStatusCompleted, done.Status)

	retried, err := s.dispatcher.Reconcile(s.ctx, task2.UUID)
	s.Require().NoError(err)
	s.Require().Equal(models.TaskStatusProcessing, retried.Status)
	s.Require().Equal(flat.ID, *retried.ProviderAccountID)
}

func (s *DispatcherTestSuite) TestGatewayCreateFailureLeavesPending() {
	account := s.createAccount("flaky", models.AccountTypeUnlimited, 1, 2)
	s.gateway.createErr = errors.New("connection reset")

	task := s.submit("will not go out")

	s.Require().Equal(models.TaskStatusPending, task.Status)
	s.Require().Nil(task.ProviderAccountID)

	updatedAccount, err := s.accountRepo.GetByID(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Require().Equal(int64(1), updatedAccount.ErrorCount)
	s.Require().NotNil(updatedAccount.LastErrorAt)
	s.Require().Zero(updatedAccount.TotalUsage)

	// Once the gateway recovers, the same task dispatches on the next poll.
	s.gateway.createErr = nil
	retried, err := s.dispatcher.Reconcile(s.ctx, task.UUID)
	s.Require().NoError(err)
	s.Require().Equal(models.TaskStatusProcessing, retried.Status)
}

func (s *DispatcherTestSuite) TestReconcileCompletesTask() {
	s.createAccount("primary", models.AccountTypeUnlimited, 1, 2)
	task := s.submit("soon done")

	s.gateway.checkResult[*task.ProviderTaskID] = &gommo.ImageInfo{
		IDBase: *task.ProviderTaskID,
		Status: gommo.StatusSuccess,
		URL:    "https://img.example/result.png",
	}

	done, err := s.dispatcher.Reconcile(s.ctx, task.UUID)
	s.Require().NoError(err)
	s.Require().Equal(models.TaskStatusCompleted, done.Status)
	s.Require().NotNil(done.ResultURL)
	s.Require().Equal("https://img.example/result.png", *done.ResultURL)
	s.Require().NotNil(done.CompletedAt)
	s.Require().Nil(done.ErrorMessage)

	// Terminal reads are idempotent and hit the provider no further.
	checks := s.gateway.checkCalls
	again, err := s.dispatcher.Reconcile(s.ctx, task.UUID)
	s.Require().NoError(err)
	s.Require().Equal(done.Status, again.Status)
	s.Require().Equal(*done.ResultURL, *again.ResultURL)
	s.Require().Equal(checks, s.gateway.checkCalls)
}

func (s *DispatcherTestSuite) TestReconcileFailsTaskAndRefunds() {
	s.createAccount("primary", models.AccountTypeUnlimited, 1, 2)
	task := s.submit("doomed")

	s.gateway.checkResult[*task.ProviderTaskID] = &gommo.ImageInfo{
		IDBase: *task.ProviderTaskID,
		Status: gommo.StatusError,
	}

	failed, err := s.dispatcher.Reconcile(s.ctx, task.UUID)
	s.Require().NoError(err)
	s.Require().Equal(models.TaskStatusFailed, failed.Status)
	s.Require().NotNil(failed.ErrorMessage)
	s.Require().Equal(upstreamErrorMessage, *failed.ErrorMessage)
	s.Require().Nil(failed.ResultURL)

	user, err := s.userRepo.GetByID(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.DefaultCreditBalance, user.CreditBalance)
}

func (s *DispatcherTestSuite) TestReconcileTransientCheckFailureLeavesTaskUnchanged() {
	s.createAccount("primary", models.AccountTypeUnlimited, 1, 2)
	task := s.submit("stuck in the mail")
	s.gateway.checkErr = errors.New("timeout")

	unchanged, err := s.dispatcher.Reconcile(s.ctx, task.UUID)
	s.Require().NoError(err)
	s.Require().Equal(models.TaskStatusProcessing, unchanged.Status)
	s.Require().Equal(*task.ProviderTaskID, *unchanged.ProviderTaskID)
	s.Require().Nil(unchanged.ResultURL)
	s.Require().Nil(unchanged.ErrorMessage)
	s.Require().Nil(unchanged.CompletedAt)
}

func (s *DispatcherTestSuite) TestReconcileStillProcessing() {
	s.createAccount("primary", models.AccountTypeUnlimited, 1, 2)
	task := s.submit("slow job")

	// The fake answers StatusProcessing for unprogrammed jobs.
	same, err := s.dispatcher.Reconcile(s.ctx, task.UUID)
	s.Require().NoError(err)
	s.Require().Equal(models.TaskStatusProcessing, same.Status)
	s.Require().Nil(same.ResultURL)
}

func (s *DispatcherTestSuite) TestReconcileUnknownTask() {
	_, err := s.dispatcher.Reconcile(s.ctx, "no-such-task")
	s.Require().ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *DispatcherTestSuite) TestStatusNeverRegresses() {
	s.createAccount("primary", models.AccountTypeUnlimited, 1, 2)
	task := s.submit("watched closely")

	order := map[models.TaskStatus]int{
		models.TaskStatusPending:    0,
		models.TaskStatusProcessing: 1,
		models.TaskStatusCompleted:  2,
		models.TaskStatusFailed:     2,
	}

	last := order[task.Status]
	for i := 0; i < 5; i++ {
		if i == 3 {
			s.gateway.checkResult[*task.ProviderTaskID] = &gommo.ImageInfo{
				IDBase: *task.ProviderTaskID,
				Status: gommo.StatusSuccess,
				URL:    "https://img.example/final.png",
			}
		}
		current, err := s.dispatcher.Reconcile(s.ctx, task.UUID)
		s.Require().NoError(err)
		s.Require().GreaterOrEqual(order[current.Status], last)
		last = order[current.Status]
	}
	s.Require().Equal(order[models.TaskStatusCompleted], last)
}

func (s *DispatcherTestSuite) TestListModels() {
	_, err := s.dispatcher.ListModels(s.ctx)
	s.Require().ErrorIs(err, ErrNoActiveAccounts)

	s.createAccount("primary", models.AccountTypeUnlimited, 1, 2)
	modelsList, err := s.dispatcher.ListModels(s.ctx)
	s.Require().NoError(err)
	s.Require().NotEmpty(modelsList)
}

func TestDispatcherTestSuite(t *testing.T) {
	suite.Run(t, new(DispatcherTestSuite))
}
