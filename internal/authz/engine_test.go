package authz

import (
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/crm-management/internal"
)

func TestAuthz(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Authz Module Suite")
}

func actorWithRole(id int64, role string) *Actor {
	return &Actor{
		ID:          id,
		Username:    role,
		Role:        role,
		Permissions: DefaultRolePermissions[role],
	}
}

var _ = ginkgo.Describe("Engine", func() {
	var (
		engine     *Engine
		management *Actor
		sales      *Actor
		otherSales *Actor
		support    *Actor
	)

	ginkgo.BeforeEach(func() {
		engine = NewEngine()
		management = actorWithRole(1, RoleManagement)
		sales = actorWithRole(10, RoleSales)
		otherSales = actorWithRole(11, RoleSales)
		support = actorWithRole(20, RoleSupport)
	})

	ginkgo.Describe("unauthenticated actors", func() {
		ginkgo.It("should deny every operation for a nil actor", func() {
			// When
			err := engine.CanReadCustomers(nil)

			// Then
			gomega.Expect(err).ToNot(gomega.BeNil())
			gomega.Expect(err.Code).To(gomega.Equal(internal.ErrCodeUnauthenticated))
		})

		ginkgo.It("should deny every operation for an actor without id", func() {
			// Given
			ghost := &Actor{Role: RoleManagement, Permissions: DefaultRolePermissions[RoleManagement]}

			// When
			err := engine.CanCreateContract(ghost)

			// Then
			gomega.Expect(err).ToNot(gomega.BeNil())
			gomega.Expect(err.Code).To(gomega.Equal(internal.ErrCodeUnauthenticated))
		})

		ginkgo.It("should report no permission for any name", func() {
			// Given
			ghost := &Actor{Permissions: []string{PermCustomerRead}}

			// Then
			gomega.Expect(ghost.HasPermission(PermCustomerRead)).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("VisibleSections", func() {
		ginkgo.It("should give management everything", func() {
			// When
			sections := engine.VisibleSections(management)

			// Then
			gomega.Expect(sections).To(gomega.Equal([]Section{
				SectionUsers, SectionCustomers, SectionContracts, SectionEvents,
			}))
		})

		ginkgo.It("should hide the users section from sales", func() {
			// When
			sections := engine.VisibleSections(sales)

			// Then
			gomega.Expect(sections).To(gomega.Equal([]Section{
				SectionCustomers, SectionContracts, SectionEvents,
			}))
			gomega.Expect(sections).ToNot(gomega.ContainElement(SectionUsers))
		})

		ginkgo.It("should hide the users section from support", func() {
			// When
			sections := engine.VisibleSections(support)

			// Then
			gomega.Expect(sections).ToNot(gomega.ContainElement(SectionUsers))
		})
	})

	ginkgo.Describe("customer decisions", func() {
		ginkgo.Context("create", func() {
			ginkgo.It("should allow sales", func() {
				gomega.Expect(engine.CanCreateCustomer(sales)).To(gomega.BeNil())
			})

			ginkgo.It("should deny management, which lacks the create bit", func() {
				// When
				err := engine.CanCreateCustomer(management)

				// Then
				gomega.Expect(err).ToNot(gomega.BeNil())
				gomega.Expect(err.Code).To(gomega.Equal(internal.ErrCodePermissionDenied))
			})

			ginkgo.It("should deny support", func() {
				gomega.Expect(engine.CanCreateCustomer(support)).ToNot(gomega.BeNil())
			})
		})

		ginkgo.Context("update", func() {
			ginkgo.It("should allow the owning sales user", func() {
				gomega.Expect(engine.CanUpdateCustomer(sales, 5, sales.ID)).To(gomega.BeNil())
			})

			ginkgo.It("should deny a different sales user and name the permission", func() {
				// When
				err := engine.CanUpdateCustomer(otherSales, 5, sales.ID)

				// Then
				gomega.Expect(err).ToNot(gomega.BeNil())
				details, ok := err.Details.(internal.PermissionDeniedDetails)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(details.Permission).To(gomega.Equal(PermCustomerUpdate))
				gomega.Expect(details.ResourceID).To(gomega.Equal(int64(5)))
			})

			ginkgo.It("should deny management even on any customer", func() {
				gomega.Expect(engine.CanUpdateCustomer(management, 5, sales.ID)).ToNot(gomega.BeNil())
			})
		})

		ginkgo.Context("delete", func() {
			ginkgo.It("should allow only the owning sales user", func() {
				gomega.Expect(engine.CanDeleteCustomer(sales, 5, sales.ID)).To(gomega.BeNil())
				gomega.Expect(engine.CanDeleteCustomer(otherSales, 5, sales.ID)).ToNot(gomega.BeNil())
			})
		})

		ginkgo.Context("read", func() {
			ginkgo.It("should be global for every role", func() {
				gomega.Expect(engine.CanReadCustomers(management)).To(gomega.BeNil())
				gomega.Expect(engine.CanReadCustomers(sales)).To(gomega.BeNil())
				gomega.Expect(engine.CanReadCustomers(support)).To(gomega.BeNil())
			})
		})
	})

	ginkgo.Describe("contract decisions", func() {
		ginkgo.Context("create", func() {
			ginkgo.It("should allow management only", func() {
				gomega.Expect(engine.CanCreateContract(management)).To(gomega.BeNil())
				gomega.Expect(engine.CanCreateContract(sales)).ToNot(gomega.BeNil())
				gomega.Expect(engine.CanCreateContract(support)).ToNot(gomega.BeNil())
			})
		})

		ginkgo.Context("update", func() {
			ginkgo.It("should allow management on any contract", func() {
				// Given
				ref := ContractRef{ID: 7, CustomerID: 3, SalesUserID: sales.ID, Signed: true}

				// Then
				gomega.Expect(engine.CanUpdateContract(management, ref)).To(gomega.BeNil())
			})

			ginkgo.It("should allow sales only on contracts of owned customers", func() {
				// Given
				ref := ContractRef{ID: 7, CustomerID: 3, SalesUserID: sales.ID}

				// Then
				gomega.Expect(engine.CanUpdateContract(sales, ref)).To(gomega.BeNil())
				gomega.Expect(engine.CanUpdateContract(otherSales, ref)).ToNot(gomega.BeNil())
			})

			ginkgo.It("should deny support, which lacks the update bit", func() {
				// Given
				ref := ContractRef{ID: 7, CustomerID: 3, SalesUserID: sales.ID}

				// Then
				gomega.Expect(engine.CanUpdateContract(support, ref)).ToNot(gomega.BeNil())
			})
		})

		ginkgo.Context("delete", func() {
			ginkgo.It("should allow management only", func() {
				gomega.Expect(engine.CanDeleteContract(management, 7)).To(gomega.BeNil())
				gomega.Expect(engine.CanDeleteContract(sales, 7)).ToNot(gomega.BeNil())
			})
		})
	})

	ginkgo.Describe("event decisions", func() {
		ginkgo.Context("create", func() {
			ginkgo.It("should allow the owning sales user on a signed contract", func() {
				// Given
				ref := ContractRef{ID: 4, CustomerID: 2, SalesUserID: sales.ID, Signed: true}

				// Then
				gomega.Expect(engine.CanCreateEvent(sales, ref)).To(gomega.BeNil())
			})

			ginkgo.It("should deny on an unsigned contract even for the owner", func() {
				// Given
				ref := ContractRef{ID: 1, CustomerID: 2, SalesUserID: sales.ID, Signed: false}

				// When
				err := engine.CanCreateEvent(sales, ref)

				// Then
				gomega.Expect(err).ToNot(gomega.BeNil())
				gomega.Expect(err.Code).To(gomega.Equal(internal.ErrCodePermissionDenied))
			})

			ginkgo.It("should deny a sales user who does not own the customer", func() {
				// Given
				ref := ContractRef{ID: 4, CustomerID: 2, SalesUserID: sales.ID, Signed: true}

				// Then
				gomega.Expect(engine.CanCreateEvent(otherSales, ref)).ToNot(gomega.BeNil())
			})

			ginkgo.It("should deny management and support, which lack the create bit", func() {
				// Given
				ref := ContractRef{ID: 4, CustomerID: 2, SalesUserID: sales.ID, Signed: true}

				// Then
				gomega.Expect(engine.CanCreateEvent(management, ref)).ToNot(gomega.BeNil())
				gomega.Expect(engine.CanCreateEvent(support, ref)).ToNot(gomega.BeNil())
			})
		})

		ginkgo.Context("update by management", func() {
			ginkgo.It("should allow changing only the support assignment", func() {
				// Given
				ref := EventRef{ID: 9, CustomerID: 2, SalesUserID: sales.ID}

				// Then
				gomega.Expect(engine.CanUpdateEvent(management, ref, []string{EventAssignmentField})).To(gomega.BeNil())
			})

			ginkgo.It("should reject the whole update when any other field is in the set", func() {
				// Given
				ref := EventRef{ID: 9, CustomerID: 2, SalesUserID: sales.ID}
				fields := []string{EventAssignmentField, "location"}

				// When
				err := engine.CanUpdateEvent(management, ref, fields)

				// Then
				gomega.Expect(err).ToNot(gomega.BeNil())
				gomega.Expect(err.Code).To(gomega.Equal(internal.ErrCodePermissionDenied))
			})
		})

		ginkgo.Context("update by support", func() {
			ginkgo.It("should allow details on an event assigned to them", func() {
				// Given
				assigned := support.ID
				ref := EventRef{ID: 9, CustomerID: 2, SalesUserID: sales.ID, SupportUserID: &assigned}

				// Then
				gomega.Expect(engine.CanUpdateEvent(support, ref, []string{"location", "note"})).To(gomega.BeNil())
			})

			ginkgo.It("should deny events assigned to someone else", func() {
				// Given
				other := int64(21)
				ref := EventRef{ID: 9, CustomerID: 2, SalesUserID: sales.ID, SupportUserID: &other}

				// Then
				gomega.Expect(engine.CanUpdateEvent(support, ref, []string{"location"})).ToNot(gomega.BeNil())
			})

			ginkgo.It("should deny unassigned events", func() {
				// Given
				ref := EventRef{ID: 9, CustomerID: 2, SalesUserID: sales.ID}

				// Then
				gomega.Expect(engine.CanUpdateEvent(support, ref, []string{"location"})).ToNot(gomega.BeNil())
			})

			ginkgo.It("should deny reassignment even on their own event", func() {
				// Given
				assigned := support.ID
				ref := EventRef{ID: 9, CustomerID: 2, SalesUserID: sales.ID, SupportUserID: &assigned}

				// When
				err := engine.CanUpdateEvent(support, ref, []string{EventAssignmentField})

				// Then
				gomega.Expect(err).ToNot(gomega.BeNil())
			})
		})

		ginkgo.Context("update by sales", func() {
			ginkgo.It("should allow the transitive customer owner", func() {
				// Given
				ref := EventRef{ID: 9, CustomerID: 2, SalesUserID: sales.ID}

				// Then
				gomega.Expect(engine.CanUpdateEvent(sales, ref, []string{"event_name"})).To(gomega.BeNil())
			})

			ginkgo.It("should deny a non-owning sales user", func() {
				// Given
				ref := EventRef{ID: 9, CustomerID: 2, SalesUserID: sales.ID}

				// Then
				gomega.Expect(engine.CanUpdateEvent(otherSales, ref, []string{"event_name"})).ToNot(gomega.BeNil())
			})
		})

		ginkgo.Context("delete", func() {
			ginkgo.It("should follow the delete bit alone", func() {
				gomega.Expect(engine.CanDeleteEvent(sales, 9)).To(gomega.BeNil())
				gomega.Expect(engine.CanDeleteEvent(management, 9)).ToNot(gomega.BeNil())
				gomega.Expect(engine.CanDeleteEvent(support, 9)).ToNot(gomega.BeNil())
			})
		})
	})

	ginkgo.Describe("user decisions", func() {
		ginkgo.It("should reserve user administration to management", func() {
			gomega.Expect(engine.CanCreateUser(management)).To(gomega.BeNil())
			gomega.Expect(engine.CanCreateUser(sales)).ToNot(gomega.BeNil())
			gomega.Expect(engine.CanReadUsers(support)).ToNot(gomega.BeNil())
			gomega.Expect(engine.CanUpdateUser(management, 2)).To(gomega.BeNil())
		})

		ginkgo.Context("delete", func() {
			ginkgo.It("should allow management to delete another user", func() {
				gomega.Expect(engine.CanDeleteUser(management, 2)).To(gomega.BeNil())
			})

			ginkgo.It("should refuse self-deletion regardless of permissions", func() {
				// When
				err := engine.CanDeleteUser(management, management.ID)

				// Then
				gomega.Expect(err).ToNot(gomega.BeNil())
				gomega.Expect(err.Code).To(gomega.Equal(internal.ErrCodeSelfDelete))
			})

			ginkgo.It("should deny sales and support, which lack the delete bit", func() {
				gomega.Expect(engine.CanDeleteUser(sales, 2)).ToNot(gomega.BeNil())
				gomega.Expect(engine.CanDeleteUser(support, 2)).ToNot(gomega.BeNil())
			})
		})
	})

	ginkgo.Describe("determinism", func() {
		ginkgo.It("should return the same decision for the same inputs", func() {
			// Given
			ref := ContractRef{ID: 4, CustomerID: 2, SalesUserID: sales.ID, Signed: true}

			// When
			first := engine.CanCreateEvent(sales, ref)
			second := engine.CanCreateEvent(sales, ref)

			// Then
			gomega.Expect(first).To(gomega.BeNil())
			gomega.Expect(second).To(gomega.BeNil())
		})
	})
})
