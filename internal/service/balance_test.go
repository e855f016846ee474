package service

import (
	"testing"

	"github.com/billforge/billforge/internal/domain/proration"
	"github.com/billforge/billforge/internal/domain/subject"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BalanceLedgerSuite struct {
	testutil.BaseServiceTestSuite
	ledger BalanceLedger
}

func TestBalanceLedger(t *testing.T) {
	suite.Run(t, new(BalanceLedgerSuite))
}

func (s *BalanceLedgerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.ledger = NewBalanceLedger(ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		SubjectRepo:    stores.SubjectRepo,
		PlanRepo:       stores.PlanRepo,
		SubRepo:        stores.SubRepo,
		ScheduleRepo:   stores.ScheduleRepo,
		Gateways:       s.GetGatewayRegistry(),
		ProrationCalc:  proration.NewCalculator(),
		EventPublisher: s.GetPublisher(),
	})
}

func (s *BalanceLedgerSuite) subjectStore() *testutil.InMemorySubjectStore {
	return s.GetStores().SubjectRepo.(*testutil.InMemorySubjectStore)
}

func (s *BalanceLedgerSuite) seedSubject(customerRef string) *subject.Subject {
	subj := &subject.Subject{
		ID:                 "subj_ledger",
		Email:              "ledger@example.com",
		GatewayCustomerRef: customerRef,
		Balance:            decimal.Zero,
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.subjectStore().Add(subj)
	return subj
}

func (s *BalanceLedgerSuite) TestApplyCreditCreatesCustomerOnDemand() {
	subj := s.seedSubject("")

	err := s.ledger.ApplyCredit(s.GetContext(), subj, s.GetGateway(), decimal.NewFromInt(25), "usd")
	s.Require().NoError(err)

	s.Equal(1, s.GetGateway().CallCount(testutil.OpCreateCustomer))
	s.NotEmpty(subj.GatewayCustomerRef)

	// The new customer ref survived persistence
	stored, err := s.GetStores().SubjectRepo.Get(s.GetContext(), subj.ID)
	s.Require().NoError(err)
	s.Equal(subj.GatewayCustomerRef, stored.GatewayCustomerRef)

	txns := s.GetGateway().BalanceTransactions()
	s.Require().Len(txns, 1)
	s.True(txns[0].Amount.Equal(decimal.NewFromInt(-25)))
	s.Equal("usd", txns[0].Currency)
}

func (s *BalanceLedgerSuite) TestApplyCreditIgnoresNonPositiveAmounts() {
	subj := s.seedSubject("")

	s.NoError(s.ledger.ApplyCredit(s.GetContext(), subj, s.GetGateway(), decimal.Zero, "usd"))
	s.NoError(s.ledger.ApplyCredit(s.GetContext(), subj, s.GetGateway(), decimal.NewFromInt(-5), "usd"))

	s.Zero(s.GetGateway().CallCount(testutil.OpCreateBalanceTransaction))
	s.Zero(s.GetGateway().CallCount(testutil.OpCreateCustomer))
}

func (s *BalanceLedgerSuite) TestPullRemoteBalanceFoldsNegativeBalance() {
	subj := s.seedSubject("cus_ledger")
	s.GetGateway().SetCustomerBalance("cus_ledger", decimal.NewFromInt(-12))

	err := s.ledger.PullRemoteBalance(s.GetContext(), subj, s.GetGateway())
	s.Require().NoError(err)

	stored, err := s.GetStores().SubjectRepo.Get(s.GetContext(), subj.ID)
	s.Require().NoError(err)
	s.True(stored.Balance.Equal(decimal.NewFromInt(-12)))
}

func (s *BalanceLedgerSuite) TestPullRemoteBalanceIgnoresPositiveBalance() {
	subj := s.seedSubject("cus_ledger")
	s.GetGateway().SetCustomerBalance("cus_ledger", decimal.NewFromInt(40))

	err := s.ledger.PullRemoteBalance(s.GetContext(), subj, s.GetGateway())
	s.Require().NoError(err)

	stored, err := s.GetStores().SubjectRepo.Get(s.GetContext(), subj.ID)
	s.Require().NoError(err)
	s.True(stored.Balance.IsZero())
}

func (s *BalanceLedgerSuite) TestPullRemoteBalanceWithoutCustomerIsNoop() {
	subj := s.seedSubject("")

	s.NoError(s.ledger.PullRemoteBalance(s.GetContext(), subj, s.GetGateway()))
	s.Zero(s.GetGateway().CallCount(testutil.OpGetCustomer))
}

func (s *BalanceLedgerSuite) TestClearLocalZeroesBalance() {
	subj := s.seedSubject("cus_ledger")
	subj.Balance = decimal.NewFromInt(-7)
	s.Require().NoError(s.GetStores().SubjectRepo.Update(s.GetContext(), subj))

	s.Require().NoError(s.ledger.ClearLocal(s.GetContext(), subj))

	stored, err := s.GetStores().SubjectRepo.Get(s.GetContext(), subj.ID)
	s.Require().NoError(err)
	s.True(stored.Balance.IsZero())
}
