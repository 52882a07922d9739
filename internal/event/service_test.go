package event

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/crm-management/internal"
	"github.com/frahmantamala/crm-management/internal/authz"
	"github.com/frahmantamala/crm-management/internal/contract"
)

func TestEvent(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Event Module Suite")
}

type mockEventRepository struct {
	events        map[int64]*Event
	contractRefs  map[int64]authz.ContractRef
	salesOwners   map[int64]int64
	nextID        int64
	updateCalls   int
	deleteCalls   int
	returnError   bool
	errorToReturn error
}

func newMockEventRepository() *mockEventRepository {
	return &mockEventRepository{
		events:       make(map[int64]*Event),
		contractRefs: make(map[int64]authz.ContractRef),
		salesOwners:  make(map[int64]int64),
		nextID:       1,
	}
}

func (m *mockEventRepository) Create(e *Event) error {
	if m.returnError {
		return m.errorToReturn
	}
	e.ID = m.nextID
	m.nextID++
	m.events[e.ID] = e
	return nil
}

func (m *mockEventRepository) GetByID(id int64) (*Event, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	e, exists := m.events[id]
	if !exists {
		return nil, ErrEventNotFound
	}
	copied := *e
	return &copied, nil
}

func (m *mockEventRepository) GetRef(id int64) (authz.EventRef, error) {
	if m.returnError {
		return authz.EventRef{}, m.errorToReturn
	}
	e, exists := m.events[id]
	if !exists {
		return authz.EventRef{}, ErrEventNotFound
	}
	return authz.EventRef{
		ID:            e.ID,
		CustomerID:    e.CustomerID,
		SalesUserID:   m.salesOwners[e.CustomerID],
		SupportUserID: e.SupportUserID,
	}, nil
}

func (m *mockEventRepository) GetContractRef(contractID int64) (authz.ContractRef, error) {
	if m.returnError {
		return authz.ContractRef{}, m.errorToReturn
	}
	ref, exists := m.contractRefs[contractID]
	if !exists {
		return authz.ContractRef{}, contract.ErrContractNotFound
	}
	return ref, nil
}

func (m *mockEventRepository) GetAll(limit, offset int) ([]*Event, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	result := make([]*Event, 0, len(m.events))
	for _, e := range m.events {
		result = append(result, e)
	}
	return result, nil
}

func (m *mockEventRepository) GetBySupportUserID(supportUserID int64, limit, offset int) ([]*Event, error) {
	result := make([]*Event, 0)
	for _, e := range m.events {
		if e.SupportUserID != nil && *e.SupportUserID == supportUserID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockEventRepository) GetBySalesUserID(salesUserID int64, limit, offset int) ([]*Event, error) {
	result := make([]*Event, 0)
	for _, e := range m.events {
		if m.salesOwners[e.CustomerID] == salesUserID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockEventRepository) GetUnassigned(limit, offset int) ([]*Event, error) {
	result := make([]*Event, 0)
	for _, e := range m.events {
		if e.SupportUserID == nil {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockEventRepository) Update(e *Event) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.updateCalls++
	m.events[e.ID] = e
	return nil
}

func (m *mockEventRepository) Delete(id int64) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.deleteCalls++
	delete(m.events, id)
	return nil
}

func (m *mockEventRepository) InTx(fn func(Repository) error) error {
	return fn(m)
}

func (m *mockEventRepository) addContract(id, customerID, salesOwnerID int64, signed bool) {
	m.contractRefs[id] = authz.ContractRef{
		ID:          id,
		CustomerID:  customerID,
		SalesUserID: salesOwnerID,
		Signed:      signed,
	}
	m.salesOwners[customerID] = salesOwnerID
}

func (m *mockEventRepository) addEvent(id, contractID, customerID int64, supportUserID *int64) *Event {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	e := &Event{
		ID:            id,
		EventNumber:   NewEventNumber(),
		ContractID:    contractID,
		CustomerID:    customerID,
		SupportUserID: supportUserID,
		EventName:     "Kickoff",
		StartDatetime: start,
		EndDatetime:   start.Add(2 * time.Hour),
	}
	m.events[id] = e
	if id >= m.nextID {
		m.nextID = id + 1
	}
	return e
}

func testActor(id int64, role string) *authz.Actor {
	return &authz.Actor{
		ID:          id,
		Username:    role,
		Role:        role,
		Permissions: authz.DefaultRolePermissions[role],
	}
}

var _ = ginkgo.Describe("EventService", func() {
	var (
		service  *Service
		mockRepo *mockEventRepository
		manager  *authz.Actor
		sales    *authz.Actor
		sales2   *authz.Actor
		support  *authz.Actor
		support2 *authz.Actor
		start    time.Time
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockEventRepository()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = NewService(mockRepo, authz.NewEngine(), logger)
		manager = testActor(1, authz.RoleManagement)
		sales = testActor(10, authz.RoleSales)
		sales2 = testActor(11, authz.RoleSales)
		support = testActor(20, authz.RoleSupport)
		support2 = testActor(21, authz.RoleSupport)
		start = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	})

	ginkgo.Describe("CreateEvent", func() {
		ginkgo.BeforeEach(func() {
			mockRepo.addContract(4, 2, sales.ID, true)
			mockRepo.addContract(1, 2, sales.ID, false)
		})

		ginkgo.Context("when the owner creates under a signed contract", func() {
			ginkgo.It("should create with a generated number and the contract's customer", func() {
				// Given
				dto := CreateEventDTO{
					ContractID:    4,
					EventName:     "Launch Party",
					StartDatetime: start,
					EndDatetime:   start.Add(3 * time.Hour),
					Attendees:     50,
				}

				// When
				created, err := service.CreateEvent(sales, dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(strings.HasPrefix(created.EventNumber, "EV-")).To(gomega.BeTrue())
				gomega.Expect(created.CustomerID).To(gomega.Equal(int64(2)))
				gomega.Expect(created.SupportUserID).To(gomega.BeNil())
			})
		})

		ginkgo.Context("when the contract is unsigned", func() {
			ginkgo.It("should deny even the owner and persist nothing", func() {
				// Given
				dto := CreateEventDTO{
					ContractID:    1,
					EventName:     "Too Early",
					StartDatetime: start,
					EndDatetime:   start.Add(time.Hour),
				}

				// When
				_, err := service.CreateEvent(sales, dto)

				// Then
				gomega.Expect(internal.IsPermissionDenied(err)).To(gomega.BeTrue())
				gomega.Expect(mockRepo.events).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when a non-owning sales user creates", func() {
			ginkgo.It("should deny", func() {
				// Given
				dto := CreateEventDTO{
					ContractID:    4,
					EventName:     "Not Mine",
					StartDatetime: start,
					EndDatetime:   start.Add(time.Hour),
				}

				// When
				_, err := service.CreateEvent(sales2, dto)

				// Then
				gomega.Expect(internal.IsPermissionDenied(err)).To(gomega.BeTrue())
			})
		})

		ginkgo.Context("when the contract does not exist", func() {
			ginkgo.It("should return not found", func() {
				// Given
				dto := CreateEventDTO{
					ContractID:    999,
					EventName:     "Orphan",
					StartDatetime: start,
					EndDatetime:   start.Add(time.Hour),
				}

				// When
				_, err := service.CreateEvent(sales, dto)

				// Then
				appErr, ok := internal.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeContractNotFound))
			})
		})

		ginkgo.Context("when the dates are inverted", func() {
			ginkgo.It("should fail validation before any repository call", func() {
				// Given
				dto := CreateEventDTO{
					ContractID:    4,
					EventName:     "Backwards",
					StartDatetime: start,
					EndDatetime:   start.Add(-time.Hour),
				}

				// When
				_, err := service.CreateEvent(sales, dto)

				// Then
				appErr, ok := internal.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvalidDate))
			})
		})
	})

	ginkgo.Describe("UpdateEvent", func() {
		ginkgo.BeforeEach(func() {
			mockRepo.addContract(4, 2, sales.ID, true)
			mockRepo.addEvent(9, 4, 2, &support.ID)
			mockRepo.addEvent(8, 4, 2, nil)
		})

		ginkgo.Context("when support updates its own event", func() {
			ginkgo.It("should apply detail changes", func() {
				// Given
				location := "Hall B"
				note := "Projector booked"

				// When
				updated, err := service.UpdateEvent(support, 9, UpdateEventDTO{Location: &location, Note: &note})

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(updated.Location).To(gomega.Equal("Hall B"))
				gomega.Expect(updated.Note).To(gomega.Equal("Projector booked"))
			})
		})

		ginkgo.Context("when support touches someone else's event", func() {
			ginkgo.It("should deny and persist nothing", func() {
				// Given
				location := "Hall B"

				// When
				_, err := service.UpdateEvent(support2, 9, UpdateEventDTO{Location: &location})

				// Then
				gomega.Expect(internal.IsPermissionDenied(err)).To(gomega.BeTrue())
				gomega.Expect(mockRepo.updateCalls).To(gomega.BeZero())
			})
		})

		ginkgo.Context("when support tries to reassign its own event", func() {
			ginkgo.It("should deny the whole update", func() {
				// Given
				dto := UpdateEventDTO{SupportUserID: &support2.ID}

				// When
				_, err := service.UpdateEvent(support, 9, dto)

				// Then
				gomega.Expect(internal.IsPermissionDenied(err)).To(gomega.BeTrue())
				gomega.Expect(*mockRepo.events[9].SupportUserID).To(gomega.Equal(support.ID))
			})
		})

		ginkgo.Context("when management changes only the assignment", func() {
			ginkgo.It("should apply it", func() {
				// When
				updated, err := service.UpdateEvent(manager, 8, UpdateEventDTO{SupportUserID: &support2.ID})

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(*updated.SupportUserID).To(gomega.Equal(support2.ID))
			})
		})

		ginkgo.Context("when management mixes assignment with other fields", func() {
			ginkgo.It("should reject the whole update and persist nothing", func() {
				// Given
				name := "Renamed"
				dto := UpdateEventDTO{SupportUserID: &support2.ID, EventName: &name}

				// When
				_, err := service.UpdateEvent(manager, 8, dto)

				// Then
				gomega.Expect(internal.IsPermissionDenied(err)).To(gomega.BeTrue())
				gomega.Expect(mockRepo.updateCalls).To(gomega.BeZero())
				gomega.Expect(mockRepo.events[8].SupportUserID).To(gomega.BeNil())
				gomega.Expect(mockRepo.events[8].EventName).To(gomega.Equal("Kickoff"))
			})
		})

		ginkgo.Context("when the owning sales user updates", func() {
			ginkgo.It("should allow any detail field", func() {
				// Given
				name := "Rescheduled Kickoff"

				// When
				updated, err := service.UpdateEvent(sales, 9, UpdateEventDTO{EventName: &name})

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(updated.EventName).To(gomega.Equal("Rescheduled Kickoff"))
			})
		})

		ginkgo.Context("when a non-owning sales user updates", func() {
			ginkgo.It("should deny", func() {
				// Given
				name := "Hijack"

				// Then
				_, err := service.UpdateEvent(sales2, 9, UpdateEventDTO{EventName: &name})
				gomega.Expect(internal.IsPermissionDenied(err)).To(gomega.BeTrue())
			})
		})

		ginkgo.Context("when the update inverts the dates", func() {
			ginkgo.It("should reject after apply and persist nothing", func() {
				// Given
				end := start.Add(-time.Hour)

				// When
				_, err := service.UpdateEvent(sales, 9, UpdateEventDTO{EndDatetime: &end})

				// Then
				appErr, ok := internal.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvalidDate))
				gomega.Expect(mockRepo.updateCalls).To(gomega.BeZero())
			})
		})
	})

	ginkgo.Describe("AssignSupport", func() {
		ginkgo.BeforeEach(func() {
			mockRepo.addContract(4, 2, sales.ID, true)
			mockRepo.addEvent(8, 4, 2, nil)
		})

		ginkgo.It("should let management assign a support user", func() {
			// When
			updated, err := service.AssignSupport(manager, 8, support.ID)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(*updated.SupportUserID).To(gomega.Equal(support.ID))
		})

		ginkgo.It("should deny support users the same path", func() {
			// When
			_, err := service.AssignSupport(support, 8, support.ID)

			// Then
			gomega.Expect(internal.IsPermissionDenied(err)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("DeleteEvent", func() {
		ginkgo.BeforeEach(func() {
			mockRepo.addContract(4, 2, sales.ID, true)
			mockRepo.addEvent(9, 4, 2, nil)
		})

		ginkgo.It("should allow sales, which holds the delete bit", func() {
			// When
			err := service.DeleteEvent(sales, 9)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.events).ToNot(gomega.HaveKey(int64(9)))
		})

		ginkgo.It("should deny management and support", func() {
			gomega.Expect(internal.IsPermissionDenied(service.DeleteEvent(manager, 9))).To(gomega.BeTrue())
			gomega.Expect(internal.IsPermissionDenied(service.DeleteEvent(support, 9))).To(gomega.BeTrue())
			gomega.Expect(mockRepo.deleteCalls).To(gomega.BeZero())
		})
	})

	ginkgo.Describe("listing", func() {
		ginkgo.BeforeEach(func() {
			mockRepo.addContract(4, 2, sales.ID, true)
			mockRepo.addContract(6, 3, sales2.ID, true)
			mockRepo.addEvent(1, 4, 2, &support.ID)
			mockRepo.addEvent(2, 4, 2, nil)
			mockRepo.addEvent(3, 6, 3, &support2.ID)
		})

		ginkgo.It("should return unassigned events only", func() {
			// When
			result, err := service.ListUnassignedEvents(manager, 20, 0)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result).To(gomega.HaveLen(1))
			gomega.Expect(result[0].ID).To(gomega.Equal(int64(2)))
		})

		ginkgo.It("should scope my events to the assigned support user", func() {
			// When
			result, err := service.ListMyEvents(support, 20, 0)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result).To(gomega.HaveLen(1))
			gomega.Expect(result[0].ID).To(gomega.Equal(int64(1)))
		})

		ginkgo.It("should scope my events to the owning sales user's customers", func() {
			// When
			result, err := service.ListMyEvents(sales, 20, 0)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result).To(gomega.HaveLen(2))
		})

		ginkgo.It("should give management the full list", func() {
			// When
			result, err := service.ListMyEvents(manager, 20, 0)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result).To(gomega.HaveLen(3))
		})
	})
})
