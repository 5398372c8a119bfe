package rental_test

import (
	"log/slog"
	"os"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/frahmantamala/rental-management/internal"
	"github.com/frahmantamala/rental-management/internal/core/dates"
	"github.com/frahmantamala/rental-management/internal/core/events"
	"github.com/frahmantamala/rental-management/internal/equipment"
	"github.com/frahmantamala/rental-management/internal/rental"
)

// Mock repository for testing
type mockRentalRepository struct {
	mu          sync.Mutex
	rentals     map[string]*rental.Rental
	order       []string
	createError error
	splitError  error
}

func newMockRentalRepository() *mockRentalRepository {
	return &mockRentalRepository{rentals: make(map[string]*rental.Rental)}
}

func (m *mockRentalRepository) Create(r *rental.Rental) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	copied := *r
	m.rentals[r.ID] = &copied
	m.order = append(m.order, r.ID)
	return nil
}

func (m *mockRentalRepository) GetByID(id string) (*rental.Rental, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rentals[id]
	if !ok {
		return nil, rental.ErrRentalNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *mockRentalRepository) ListActive() ([]*rental.Rental, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*rental.Rental
	for _, id := range m.order {
		if r := m.rentals[id]; r != nil && r.Status == rental.StatusActive {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockRentalRepository) ListAll() ([]*rental.Rental, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*rental.Rental
	for _, id := range m.order {
		if r := m.rentals[id]; r != nil {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockRentalRepository) ListActiveByEquipment(equipmentID int64) ([]*rental.Rental, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*rental.Rental
	for _, id := range m.order {
		r := m.rentals[id]
		if r != nil && r.EquipmentID == equipmentID && r.Status == rental.StatusActive {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockRentalRepository) UpdatePeriod(id string, start, end dates.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rentals[id]
	if !ok {
		return rental.ErrRentalNotFound
	}
	r.StartDate = start
	r.EndDate = end
	return nil
}

func (m *mockRentalRepository) MarkReturned(id string, returnDate dates.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rentals[id]
	if !ok || r.Status != rental.StatusActive {
		return rental.ErrAlreadyReturned
	}
	r.Status = rental.StatusReturned
	r.ReturnDate = &returnDate
	return nil
}

func (m *mockRentalRepository) SplitReturn(originalID string, remainingQuantity int, sibling *rental.Rental) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.splitError != nil {
		return m.splitError
	}
	r, ok := m.rentals[originalID]
	if !ok || r.Status != rental.StatusActive {
		return rental.ErrRentalNotFound
	}
	r.Quantity = remainingQuantity
	copied := *sibling
	m.rentals[sibling.ID] = &copied
	m.order = append(m.order, sibling.ID)
	return nil
}

func (m *mockRentalRepository) Reactivate(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rentals[id]
	if !ok || r.Status != rental.StatusReturned {
		return rental.ErrNotReturned
	}
	r.Status = rental.StatusActive
	r.ReturnDate = nil
	return nil
}

func (m *mockRentalRepository) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rentals[id]; !ok {
		return rental.ErrRentalNotFound
	}
	delete(m.rentals, id)
	return nil
}

// Mock site registry for testing
type mockSiteRegistry struct {
	mu          sync.Mutex
	ensured     []string
	ensureError error
}

func (m *mockSiteRegistry) EnsureSite(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ensureError != nil {
		return m.ensureError
	}
	m.ensured = append(m.ensured, name)
	return nil
}

var _ = Describe("RentalService", func() {
	var (
		service      *rental.Service
		repo         *mockRentalRepository
		equipmentSrc *mockEquipmentSource
		sites        *mockSiteRegistry
		testLogger   *slog.Logger
	)

	registerDTO := func(qty int, start, end string) rental.RegisterRentalDTO {
		return rental.RegisterRentalDTO{
			EquipmentID:    1,
			StartDate:      mustDate(start),
			EndDate:        mustDate(end),
			Quantity:       qty,
			Site:           "Harbor Expansion",
			SourceLocation: "North Yard",
		}
	}

	BeforeEach(func() {
		repo = newMockRentalRepository()
		equipmentSrc = newMockEquipmentSource()
		sites = &mockSiteRegistry{}
		testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		fixture := equipmentFixture
		equipmentSrc.items[1] = &fixture
		engine := rental.NewEngine(repo, equipmentSrc, testLogger)
		bus := events.NewEventBus(testLogger)
		service = rental.NewService(repo, equipmentSrc, sites, engine, bus, testLogger)
	})

	Describe("RegisterRental", func() {
		It("creates an active rental with a fresh id and registration time", func() {
			r, err := service.RegisterRental(registerDTO(2, "2026-09-01", "2026-09-05"), "operator@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(r.ID).NotTo(BeEmpty())
			Expect(r.Status).To(Equal(rental.StatusActive))
			Expect(r.Borrower).To(Equal("operator@example.com"))
			Expect(r.EquipmentName).To(Equal("Generator 25kVA"))
			Expect(r.RegisteredAt).NotTo(BeZero())
		})

		It("auto-registers the job site", func() {
			_, err := service.RegisterRental(registerDTO(1, "2026-09-01", "2026-09-01"), "operator@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(sites.ensured).To(ContainElement("Harbor Expansion"))
		})

		It("rejects a request that would exceed capacity", func() {
			_, err := service.RegisterRental(registerDTO(3, "2026-09-01", "2026-09-10"), "a@example.com")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RegisterRental(registerDTO(3, "2026-09-05", "2026-09-07"), "b@example.com")
			Expect(err).To(MatchError(rental.ErrCapacityExceeded))
		})

		It("admits back-to-back periods that never overlap", func() {
			_, err := service.RegisterRental(registerDTO(5, "2026-09-01", "2026-09-05"), "a@example.com")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RegisterRental(registerDTO(5, "2026-09-06", "2026-09-10"), "b@example.com")
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects an inverted period", func() {
			_, err := service.RegisterRental(registerDTO(1, "2026-09-10", "2026-09-01"), "a@example.com")
			Expect(err).To(HaveOccurred())
		})

		It("rejects a zero quantity", func() {
			_, err := service.RegisterRental(registerDTO(0, "2026-09-01", "2026-09-05"), "a@example.com")
			Expect(err).To(HaveOccurred())
		})

		It("fails for unknown equipment", func() {
			dto := registerDTO(1, "2026-09-01", "2026-09-05")
			dto.EquipmentID = 999
			_, err := service.RegisterRental(dto, "a@example.com")
			Expect(err).To(HaveOccurred())
		})

		It("never overcommits under concurrent registration", func() {
			const workers = 20

			var wg sync.WaitGroup
			admitted := make(chan struct{}, workers)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer GinkgoRecover()
					_, err := service.RegisterRental(registerDTO(1, "2026-09-01", "2026-09-05"), "racer@example.com")
					if err == nil {
						admitted <- struct{}{}
					} else {
						Expect(err).To(MatchError(rental.ErrCapacityExceeded))
					}
				}()
			}
			wg.Wait()
			close(admitted)

			Expect(len(admitted)).To(Equal(5))
		})
	})

	Describe("UpdateRentalPeriod", func() {
		It("moves a rental when the new period fits", func() {
			r, err := service.RegisterRental(registerDTO(5, "2026-09-01", "2026-09-05"), "a@example.com")
			Expect(err).NotTo(HaveOccurred())

			// fully booked by itself; the edit must exclude its own allocation
			err = service.UpdateRentalPeriod(r.ID, rental.UpdatePeriodDTO{
				StartDate: mustDate("2026-09-03"),
				EndDate:   mustDate("2026-09-08"),
			})
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.GetRental(r.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.StartDate.String()).To(Equal("2026-09-03"))
			Expect(updated.EndDate.String()).To(Equal("2026-09-08"))
		})

		It("rejects a move into a period held by another rental", func() {
			r, err := service.RegisterRental(registerDTO(3, "2026-09-01", "2026-09-05"), "a@example.com")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.RegisterRental(registerDTO(3, "2026-09-10", "2026-09-15"), "b@example.com")
			Expect(err).NotTo(HaveOccurred())

			err = service.UpdateRentalPeriod(r.ID, rental.UpdatePeriodDTO{
				StartDate: mustDate("2026-09-10"),
				EndDate:   mustDate("2026-09-12"),
			})
			Expect(err).To(MatchError(rental.ErrCapacityExceeded))
		})

		It("fails for an unknown rental", func() {
			err := service.UpdateRentalPeriod("missing", rental.UpdatePeriodDTO{
				StartDate: mustDate("2026-09-01"),
				EndDate:   mustDate("2026-09-02"),
			})
			Expect(err).To(MatchError(rental.ErrRentalNotFound))
		})
	})

	Describe("ReturnEquipment", func() {
		var rentalID string

		BeforeEach(func() {
			r, err := service.RegisterRental(registerDTO(4, "2026-09-01", "2026-09-10"), "a@example.com")
			Expect(err).NotTo(HaveOccurred())
			rentalID = r.ID
		})

		It("closes the record in place on a full return", func() {
			err := service.ReturnEquipment(rentalID, rental.ReturnDTO{
				ReturnDate: mustDate("2026-09-08"),
				Quantity:   4,
			})
			Expect(err).NotTo(HaveOccurred())

			r, err := service.GetRental(rentalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Status).To(Equal(rental.StatusReturned))
			Expect(r.ReturnDate).NotTo(BeNil())
			Expect(r.ReturnDate.String()).To(Equal("2026-09-08"))
			Expect(r.Quantity).To(Equal(4))

			all, err := service.ListAllRentals()
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
		})

		It("splits the record on a partial return", func() {
			err := service.ReturnEquipment(rentalID, rental.ReturnDTO{
				ReturnDate: mustDate("2026-09-05"),
				Quantity:   1,
			})
			Expect(err).NotTo(HaveOccurred())

			original, err := service.GetRental(rentalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(original.Status).To(Equal(rental.StatusActive))
			Expect(original.Quantity).To(Equal(3))
			Expect(original.ReturnDate).To(BeNil())

			all, err := service.ListAllRentals()
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))

			var sibling *rental.Rental
			for _, r := range all {
				if r.ID != rentalID {
					sibling = r
				}
			}
			Expect(sibling).NotTo(BeNil())
			Expect(sibling.Status).To(Equal(rental.StatusReturned))
			Expect(sibling.Quantity).To(Equal(1))
			Expect(sibling.ReturnDate.String()).To(Equal("2026-09-05"))
			Expect(sibling.EquipmentID).To(Equal(original.EquipmentID))
			Expect(sibling.Site).To(Equal(original.Site))
			Expect(sibling.Borrower).To(Equal(original.Borrower))
		})

		It("frees capacity for the returned share", func() {
			// 4 of 5 rented; 2 more would not fit
			_, err := service.RegisterRental(registerDTO(2, "2026-09-01", "2026-09-10"), "b@example.com")
			Expect(err).To(MatchError(rental.ErrCapacityExceeded))

			err = service.ReturnEquipment(rentalID, rental.ReturnDTO{
				ReturnDate: mustDate("2026-09-05"),
				Quantity:   3,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RegisterRental(registerDTO(2, "2026-09-01", "2026-09-10"), "b@example.com")
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a second return of the same record", func() {
			err := service.ReturnEquipment(rentalID, rental.ReturnDTO{
				ReturnDate: mustDate("2026-09-08"),
				Quantity:   4,
			})
			Expect(err).NotTo(HaveOccurred())

			err = service.ReturnEquipment(rentalID, rental.ReturnDTO{
				ReturnDate: mustDate("2026-09-09"),
				Quantity:   4,
			})
			Expect(err).To(MatchError(rental.ErrAlreadyReturned))
		})

		It("rejects a non-positive return quantity", func() {
			err := service.ReturnEquipment(rentalID, rental.ReturnDTO{
				ReturnDate: mustDate("2026-09-08"),
				Quantity:   0,
			})
			Expect(err).To(HaveOccurred())
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeValidationFailed))
		})

		It("rejects returning more than is outstanding", func() {
			err := service.ReturnEquipment(rentalID, rental.ReturnDTO{
				ReturnDate: mustDate("2026-09-08"),
				Quantity:   5,
			})
			Expect(err).To(MatchError(rental.ErrInvalidQuantity))
		})

		It("fails for an unknown rental", func() {
			err := service.ReturnEquipment("missing", rental.ReturnDTO{
				ReturnDate: mustDate("2026-09-08"),
				Quantity:   1,
			})
			Expect(err).To(MatchError(rental.ErrRentalNotFound))
		})
	})

	Describe("UndoReturn", func() {
		It("reactivates a returned record", func() {
			r, err := service.RegisterRental(registerDTO(2, "2026-09-01", "2026-09-05"), "a@example.com")
			Expect(err).NotTo(HaveOccurred())

			err = service.ReturnEquipment(r.ID, rental.ReturnDTO{
				ReturnDate: mustDate("2026-09-04"),
				Quantity:   2,
			})
			Expect(err).NotTo(HaveOccurred())

			err = service.UndoReturn(r.ID)
			Expect(err).NotTo(HaveOccurred())

			restored, err := service.GetRental(r.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(restored.Status).To(Equal(rental.StatusActive))
			Expect(restored.ReturnDate).To(BeNil())
		})

		It("leaves a partial-return sibling untouched", func() {
			r, err := service.RegisterRental(registerDTO(4, "2026-09-01", "2026-09-05"), "a@example.com")
			Expect(err).NotTo(HaveOccurred())

			err = service.ReturnEquipment(r.ID, rental.ReturnDTO{
				ReturnDate: mustDate("2026-09-03"),
				Quantity:   1,
			})
			Expect(err).NotTo(HaveOccurred())

			all, err := service.ListAllRentals()
			Expect(err).NotTo(HaveOccurred())
			var siblingID string
			for _, rec := range all {
				if rec.ID != r.ID {
					siblingID = rec.ID
				}
			}

			err = service.UndoReturn(siblingID)
			Expect(err).NotTo(HaveOccurred())

			// the original keeps its decremented quantity; no re-merge
			original, err := service.GetRental(r.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(original.Quantity).To(Equal(3))

			sibling, err := service.GetRental(siblingID)
			Expect(err).NotTo(HaveOccurred())
			Expect(sibling.Status).To(Equal(rental.StatusActive))
			Expect(sibling.Quantity).To(Equal(1))
		})

		It("rejects undo on an active rental", func() {
			r, err := service.RegisterRental(registerDTO(1, "2026-09-01", "2026-09-05"), "a@example.com")
			Expect(err).NotTo(HaveOccurred())

			err = service.UndoReturn(r.ID)
			Expect(err).To(MatchError(rental.ErrNotReturned))
		})
	})

	Describe("DeleteRental", func() {
		It("removes the record and frees its capacity", func() {
			r, err := service.RegisterRental(registerDTO(5, "2026-09-01", "2026-09-05"), "a@example.com")
			Expect(err).NotTo(HaveOccurred())

			err = service.DeleteRental(r.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.GetRental(r.ID)
			Expect(err).To(MatchError(rental.ErrRentalNotFound))

			_, err = service.RegisterRental(registerDTO(5, "2026-09-01", "2026-09-05"), "b@example.com")
			Expect(err).NotTo(HaveOccurred())
		})

		It("fails for an unknown rental", func() {
			err := service.DeleteRental("missing")
			Expect(err).To(MatchError(rental.ErrRentalNotFound))
		})
	})

	Describe("Listing", func() {
		It("separates active rentals from full history", func() {
			first, err := service.RegisterRental(registerDTO(1, "2026-09-01", "2026-09-02"), "a@example.com")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.RegisterRental(registerDTO(1, "2026-09-03", "2026-09-04"), "b@example.com")
			Expect(err).NotTo(HaveOccurred())

			err = service.ReturnEquipment(first.ID, rental.ReturnDTO{
				ReturnDate: mustDate("2026-09-02"),
				Quantity:   1,
			})
			Expect(err).NotTo(HaveOccurred())

			active, err := service.ListActiveRentals()
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(HaveLen(1))

			all, err := service.ListAllRentals()
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})
	})
})

var equipmentFixture = equipment.Equipment{
	ID:            1,
	Name:          "Generator 25kVA",
	Model:         "DCA-25",
	Manufacturer:  "Denyo",
	TotalQuantity: 5,
	HomeLocation:  "North Yard",
}
