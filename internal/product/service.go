package product

import "errors"

var (
	ErrInvalidPrice = errors.New("price must be non-negative")
	ErrInvalidStock = errors.New("stock quantity must be non-negative")
)

// ServiceInterface is implemented by *Service; other packages (cart, checkout
// handler tests) accept it so they can substitute doubles.
type ServiceInterface interface {
	List(f Filter) ([]Product, int, error)
	GetByID(id int) (Product, error)
	ListBySeller(sellerID int) ([]Product, error)
	ListByIDs(ids []int) ([]Product, error)
	Create(p Product) (Product, error)
	Update(id int, p Product) (Product, error)
	Delete(id int) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(f Filter) ([]Product, int, error) {
	return s.repo.List(f)
}

func (s *Service) GetByID(id int) (Product, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListBySeller(sellerID int) ([]Product, error) {
	return s.repo.ListBySeller(sellerID)
}

func (s *Service) ListByIDs(ids []int) ([]Product, error) {
	return s.repo.ListByIDs(ids)
}

func (s *Service) Create(p Product) (Product, error) {
	if err := validate(p); err != nil {
		return Product{}, err
	}
	return s.repo.Create(p)
}

func (s *Service) Update(id int, p Product) (Product, error) {
	if err := validate(p); err != nil {
		return Product{}, err
	}
	return s.repo.Update(id, p)
}

func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}

func validate(p Product) error {
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	if p.StockQuantity < 0 {
		return ErrInvalidStock
	}
	return nil
}

var _ ServiceInterface = (*Service)(nil)
