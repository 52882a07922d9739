package contract

import (
	"io"
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/crm-management/internal"
	"github.com/frahmantamala/crm-management/internal/authz"
	"github.com/frahmantamala/crm-management/internal/customer"
)

func TestContract(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Contract Module Suite")
}

type mockContractRepository struct {
	contracts     map[int64]*Contract
	owners        map[int64]int64
	nextID        int64
	updateCalls   int
	deleteCalls   int
	lastFilter    Filter
	returnError   bool
	errorToReturn error
}

func newMockContractRepository() *mockContractRepository {
	return &mockContractRepository{
		contracts: make(map[int64]*Contract),
		owners:    make(map[int64]int64),
		nextID:    1,
	}
}

func (m *mockContractRepository) Create(c *Contract) error {
	if m.returnError {
		return m.errorToReturn
	}
	c.ID = m.nextID
	m.nextID++
	m.contracts[c.ID] = c
	return nil
}

func (m *mockContractRepository) GetByID(id int64) (*Contract, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	c, exists := m.contracts[id]
	if !exists {
		return nil, ErrContractNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockContractRepository) GetRef(id int64) (authz.ContractRef, error) {
	if m.returnError {
		return authz.ContractRef{}, m.errorToReturn
	}
	c, exists := m.contracts[id]
	if !exists {
		return authz.ContractRef{}, ErrContractNotFound
	}
	return authz.ContractRef{
		ID:          c.ID,
		CustomerID:  c.CustomerID,
		SalesUserID: m.owners[c.CustomerID],
		Signed:      c.Signed,
	}, nil
}

func (m *mockContractRepository) GetAll(filter Filter, limit, offset int) ([]*Contract, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	m.lastFilter = filter
	result := make([]*Contract, 0, len(m.contracts))
	for _, c := range m.contracts {
		if filter.Unsigned && c.Signed {
			continue
		}
		if filter.Unpaid && c.BalanceDue == 0 {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (m *mockContractRepository) GetByManagementUserID(userID int64, filter Filter, limit, offset int) ([]*Contract, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	result := make([]*Contract, 0)
	for _, c := range m.contracts {
		if c.ManagementUserID == userID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockContractRepository) GetBySalesUserID(salesUserID int64, filter Filter, limit, offset int) ([]*Contract, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	result := make([]*Contract, 0)
	for _, c := range m.contracts {
		if m.owners[c.CustomerID] == salesUserID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockContractRepository) Update(c *Contract) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.updateCalls++
	m.contracts[c.ID] = c
	return nil
}

func (m *mockContractRepository) Delete(id int64) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.deleteCalls++
	delete(m.contracts, id)
	return nil
}

func (m *mockContractRepository) InTx(fn func(Repository) error) error {
	return fn(m)
}

func (m *mockContractRepository) addContract(id, customerID, salesOwnerID, managementID int64, total, due int64, signed bool) {
	m.contracts[id] = &Contract{
		ID:               id,
		CustomerID:       customerID,
		ManagementUserID: managementID,
		TotalAmount:      total,
		BalanceDue:       due,
		Signed:           signed,
	}
	m.owners[customerID] = salesOwnerID
	if id >= m.nextID {
		m.nextID = id + 1
	}
}

type mockCustomerReader struct {
	customers map[int64]*customer.Customer
}

func (m *mockCustomerReader) GetByID(id int64) (*customer.Customer, error) {
	c, exists := m.customers[id]
	if !exists {
		return nil, customer.ErrCustomerNotFound
	}
	return c, nil
}

func testActor(id int64, role string) *authz.Actor {
	return &authz.Actor{
		ID:          id,
		Username:    role,
		Role:        role,
		Permissions: authz.DefaultRolePermissions[role],
	}
}

var _ = ginkgo.Describe("ContractService", func() {
	var (
		service   *Service
		mockRepo  *mockContractRepository
		customers *mockCustomerReader
		manager   *authz.Actor
		sales     *authz.Actor
		sales2    *authz.Actor
		support   *authz.Actor
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockContractRepository()
		customers = &mockCustomerReader{customers: map[int64]*customer.Customer{
			2: {ID: 2, SalesUserID: 10, Email: "acme@example.com"},
		}}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = NewService(mockRepo, customers, authz.NewEngine(), logger)
		manager = testActor(1, authz.RoleManagement)
		sales = testActor(10, authz.RoleSales)
		sales2 = testActor(11, authz.RoleSales)
		support = testActor(20, authz.RoleSupport)
	})

	ginkgo.Describe("CreateContract", func() {
		ginkgo.Context("when a management user creates a contract", func() {
			ginkgo.It("should record the actor as author", func() {
				// Given
				dto := CreateContractDTO{CustomerID: 2, TotalAmount: 100000, BalanceDue: 100000}

				// When
				created, err := service.CreateContract(manager, dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(created.ManagementUserID).To(gomega.Equal(manager.ID))
				gomega.Expect(created.Signed).To(gomega.BeFalse())
			})
		})

		ginkgo.Context("when a sales user tries", func() {
			ginkgo.It("should be denied", func() {
				// When
				_, err := service.CreateContract(sales, CreateContractDTO{CustomerID: 2, TotalAmount: 1})

				// Then
				gomega.Expect(internal.IsPermissionDenied(err)).To(gomega.BeTrue())
				gomega.Expect(mockRepo.contracts).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when the customer does not exist", func() {
			ginkgo.It("should return not found", func() {
				// When
				_, err := service.CreateContract(manager, CreateContractDTO{CustomerID: 999, TotalAmount: 1})

				// Then
				gomega.Expect(err).To(gomega.Equal(customer.ErrCustomerNotFound))
			})
		})

		ginkgo.Context("when the amounts are inconsistent", func() {
			ginkgo.It("should reject balance_due above total_amount", func() {
				// When
				_, err := service.CreateContract(manager, CreateContractDTO{
					CustomerID: 2, TotalAmount: 100, BalanceDue: 200,
				})

				// Then
				appErr, ok := internal.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvalidAmount))
			})
		})
	})

	ginkgo.Describe("UpdateContract", func() {
		ginkgo.BeforeEach(func() {
			mockRepo.addContract(7, 2, sales.ID, manager.ID, 100000, 100000, false)
		})

		ginkgo.Context("when management updates any contract", func() {
			ginkgo.It("should apply the change", func() {
				// Given
				signed := true

				// When
				updated, err := service.UpdateContract(manager, 7, UpdateContractDTO{Signed: &signed})

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(updated.Signed).To(gomega.BeTrue())
			})
		})

		ginkgo.Context("when the owning sales user updates", func() {
			ginkgo.It("should apply the change", func() {
				// Given
				due := int64(50000)

				// When
				updated, err := service.UpdateContract(sales, 7, UpdateContractDTO{BalanceDue: &due})

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(updated.BalanceDue).To(gomega.Equal(due))
			})
		})

		ginkgo.Context("when a non-owning sales user updates", func() {
			ginkgo.It("should deny and leave the row untouched", func() {
				// Given
				due := int64(0)

				// When
				_, err := service.UpdateContract(sales2, 7, UpdateContractDTO{BalanceDue: &due})

				// Then
				gomega.Expect(internal.IsPermissionDenied(err)).To(gomega.BeTrue())
				gomega.Expect(mockRepo.updateCalls).To(gomega.BeZero())
				gomega.Expect(mockRepo.contracts[7].BalanceDue).To(gomega.Equal(int64(100000)))
			})
		})

		ginkgo.Context("when support tries", func() {
			ginkgo.It("should be denied", func() {
				// Given
				due := int64(0)

				// Then
				_, err := service.UpdateContract(support, 7, UpdateContractDTO{BalanceDue: &due})
				gomega.Expect(internal.IsPermissionDenied(err)).To(gomega.BeTrue())
			})
		})

		ginkgo.Context("when the update would break the amount invariant", func() {
			ginkgo.It("should reject balance_due above total_amount after apply", func() {
				// Given
				total := int64(10000)

				// When
				_, err := service.UpdateContract(manager, 7, UpdateContractDTO{TotalAmount: &total})

				// Then
				appErr, ok := internal.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvalidAmount))
				gomega.Expect(mockRepo.updateCalls).To(gomega.BeZero())
			})
		})
	})

	ginkgo.Describe("DeleteContract", func() {
		ginkgo.BeforeEach(func() {
			mockRepo.addContract(7, 2, sales.ID, manager.ID, 100000, 0, true)
		})

		ginkgo.It("should allow management", func() {
			// When
			err := service.DeleteContract(manager, 7)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.contracts).ToNot(gomega.HaveKey(int64(7)))
		})

		ginkgo.It("should deny the owning sales user", func() {
			// When
			err := service.DeleteContract(sales, 7)

			// Then
			gomega.Expect(internal.IsPermissionDenied(err)).To(gomega.BeTrue())
			gomega.Expect(mockRepo.deleteCalls).To(gomega.BeZero())
		})
	})

	ginkgo.Describe("ListContracts", func() {
		ginkgo.BeforeEach(func() {
			mockRepo.addContract(1, 2, sales.ID, manager.ID, 100000, 100000, false)
			mockRepo.addContract(2, 2, sales.ID, manager.ID, 100000, 50000, true)
			mockRepo.addContract(3, 2, sales.ID, manager.ID, 100000, 0, true)
		})

		ginkgo.It("should pass the unsigned filter through to the repository", func() {
			// When
			result, err := service.ListContracts(support, Filter{Unsigned: true}, 20, 0)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.lastFilter.Unsigned).To(gomega.BeTrue())
			gomega.Expect(result).To(gomega.HaveLen(1))
			gomega.Expect(result[0].ID).To(gomega.Equal(int64(1)))
		})

		ginkgo.It("should filter unpaid contracts", func() {
			// When
			result, err := service.ListContracts(manager, Filter{Unpaid: true}, 20, 0)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result).To(gomega.HaveLen(2))
		})
	})

	ginkgo.Describe("ListMyContracts", func() {
		ginkgo.BeforeEach(func() {
			mockRepo.addContract(1, 2, sales.ID, manager.ID, 100000, 0, true)
			mockRepo.addContract(2, 3, sales2.ID, 99, 100000, 0, true)
		})

		ginkgo.It("should return authored contracts for management", func() {
			// When
			result, err := service.ListMyContracts(manager, Filter{}, 20, 0)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result).To(gomega.HaveLen(1))
			gomega.Expect(result[0].ManagementUserID).To(gomega.Equal(manager.ID))
		})

		ginkgo.It("should return contracts on owned customers for sales", func() {
			// When
			result, err := service.ListMyContracts(sales, Filter{}, 20, 0)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result).To(gomega.HaveLen(1))
			gomega.Expect(result[0].CustomerID).To(gomega.Equal(int64(2)))
		})

		ginkgo.It("should return an empty slice for support", func() {
			// When
			result, err := service.ListMyContracts(support, Filter{}, 20, 0)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result).To(gomega.BeEmpty())
		})
	})
})
