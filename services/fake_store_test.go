package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"fooddelivery/apperr"
	"fooddelivery/events"
	"fooddelivery/models"
	"fooddelivery/repository"
)

// fakeStore keeps rows in maps and satisfies every store interface the
// services declare.
type fakeStore struct {
	restaurants map[int64]*models.Restaurant
	menu        map[int64]models.MenuItem
	addresses   map[int64]*models.CustomerAddress
	orders      map[int64]*models.Order
	drivers     map[int64]*models.Driver
	users       map[string]*models.User
	roles       map[uuid.UUID][]string
	reviews     map[int64]map[uuid.UUID]*models.Review
	favorites   map[uuid.UUID]map[int64]bool

	nextID        int64
	createCalls   int
	rateCalls     int
	loseRace      bool
	history       []models.OrderStatusHistory
	lastDiscovery models.DiscoveryFilter
}

var (
	_ OrderStore      = (*fakeStore)(nil)
	_ RestaurantStore = (*fakeStore)(nil)
	_ ReviewStore     = (*fakeStore)(nil)
	_ AddressStore    = (*fakeStore)(nil)
	_ UserStore       = (*fakeStore)(nil)
	_ DriverStore     = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		restaurants: map[int64]*models.Restaurant{},
		menu:        map[int64]models.MenuItem{},
		addresses:   map[int64]*models.CustomerAddress{},
		orders:      map[int64]*models.Order{},
		drivers:     map[int64]*models.Driver{},
		users:       map[string]*models.User{},
		roles:       map[uuid.UUID][]string{},
		reviews:     map[int64]map[uuid.UUID]*models.Review{},
		favorites:   map[uuid.UUID]map[int64]bool{},
		nextID:      100,
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) DiscoverRestaurants(_ context.Context, flt models.DiscoveryFilter) (models.Page[models.RestaurantListing], error) {
	f.lastDiscovery = flt
	var rows []models.RestaurantListing
	for _, r := range f.restaurants {
		if r.IsActive {
			rows = append(rows, models.RestaurantListing{Restaurant: *r})
		}
	}
	return models.NewPage(rows, flt.Page, flt.PerPage, int64(len(rows))), nil
}

func (f *fakeStore) GetRestaurant(_ context.Context, id int64) (*models.Restaurant, error) {
	r, ok := f.restaurants[id]
	if !ok {
		return nil, apperr.NotFound("Restaurant not found.")
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) ListRestaurants(_ context.Context, page, perPage int) (models.Page[models.Restaurant], error) {
	var rows []models.Restaurant
	for _, r := range f.restaurants {
		rows = append(rows, *r)
	}
	return models.NewPage(rows, page, perPage, int64(len(rows))), nil
}

func (f *fakeStore) CreateRestaurant(_ context.Context, r *models.Restaurant) error {
	r.ID = f.id()
	cp := *r
	f.restaurants[r.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateRestaurant(_ context.Context, id int64, req models.RestaurantRequest) (*models.Restaurant, error) {
	r, ok := f.restaurants[id]
	if !ok {
		return nil, apperr.NotFound("Restaurant not found.")
	}
	if req.Name != nil {
		r.Name = *req.Name
	}
	if req.Tags != nil {
		r.Tags = req.Tags
	}
	return r, nil
}

func (f *fakeStore) SoftDeleteRestaurant(_ context.Context, id int64) (bool, error) {
	if _, ok := f.restaurants[id]; !ok {
		return false, nil
	}
	delete(f.restaurants, id)
	return true, nil
}

func (f *fakeStore) ListMenu(_ context.Context, restaurantID int64, availableOnly bool) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, m := range f.menu {
		if m.RestaurantID == restaurantID && (!availableOnly || m.IsAvailable) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) GetMenuItemsByIDs(_ context.Context, ids []int64) (map[int64]models.MenuItem, error) {
	out := map[int64]models.MenuItem{}
	for _, id := range ids {
		if m, ok := f.menu[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

func (f *fakeStore) CreateMenuItem(_ context.Context, it *models.MenuItem) error {
	it.ID = f.id()
	f.menu[it.ID] = *it
	return nil
}

func (f *fakeStore) UpdateMenuItem(_ context.Context, id int64, req models.MenuItemRequest) (*models.MenuItem, error) {
	m, ok := f.menu[id]
	if !ok {
		return nil, apperr.NotFound("Menu item not found.")
	}
	if req.Price != nil {
		m.Price = *req.Price
	}
	f.menu[id] = m
	return &m, nil
}

func (f *fakeStore) SoftDeleteMenuItem(_ context.Context, id int64) (bool, error) {
	if _, ok := f.menu[id]; !ok {
		return false, nil
	}
	delete(f.menu, id)
	return true, nil
}

func (f *fakeStore) AddFavorite(_ context.Context, userID uuid.UUID, restaurantID int64) error {
	if f.favorites[userID] == nil {
		f.favorites[userID] = map[int64]bool{}
	}
	f.favorites[userID][restaurantID] = true
	return nil
}

func (f *fakeStore) RemoveFavorite(_ context.Context, userID uuid.UUID, restaurantID int64) error {
	delete(f.favorites[userID], restaurantID)
	return nil
}

func (f *fakeStore) GetCustomerAddress(_ context.Context, userID uuid.UUID, id int64) (*models.CustomerAddress, error) {
	a, ok := f.addresses[id]
	if !ok || a.UserID != userID {
		return nil, apperr.NotFound("Address not found.")
	}
	return a, nil
}

func (f *fakeStore) ListCustomerAddresses(_ context.Context, userID uuid.UUID) ([]models.CustomerAddress, error) {
	var out []models.CustomerAddress
	for _, a := range f.addresses {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateCustomerAddress(_ context.Context, userID uuid.UUID, req models.AddressRequest) (*models.CustomerAddress, error) {
	id := f.id()
	ca := &models.CustomerAddress{
		ID:        id,
		UserID:    userID,
		AddressID: id,
		IsDefault: req.IsDefault,
		Address: models.Address{
			ID:           id,
			StreetNumber: req.StreetNumber,
			AddressLine1: req.AddressLine1,
			City:         req.City,
			Region:       req.Region,
			PostalCode:   req.PostalCode,
			CountryCode:  req.CountryCode,
		},
	}
	f.addresses[id] = ca
	return ca, nil
}

func (f *fakeStore) DeleteCustomerAddress(_ context.Context, userID uuid.UUID, id int64) error {
	a, ok := f.addresses[id]
	if !ok || a.UserID != userID {
		return apperr.NotFound("Address not found.")
	}
	for _, o := range f.orders {
		if o.DeliveryAddressID == a.AddressID {
			return apperr.Conflict("The address is used by an existing order and cannot be deleted.", nil)
		}
	}
	delete(f.addresses, id)
	return nil
}

func (f *fakeStore) CreateOrder(_ context.Context, o *models.Order, changedBy uuid.UUID) error {
	f.createCalls++
	o.ID = f.id()
	o.Status = models.StatusPending
	o.OrderDatetime = time.Now().UTC()
	cp := *o
	f.orders[o.ID] = &cp
	f.history = append(f.history, models.OrderStatusHistory{Status: models.StatusPending, ChangedBy: changedBy})
	return nil
}

func (f *fakeStore) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, apperr.NotFound("Order not found.")
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) LoadOrder(ctx context.Context, id int64, withHistory bool) (*models.Order, error) {
	o, err := f.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if r, ok := f.restaurants[o.RestaurantID]; ok {
		o.Restaurant = &models.RestaurantSummary{
			ID: r.ID, Name: r.Name, OwnerID: r.OwnerID, Latitude: r.Latitude, Longitude: r.Longitude,
		}
	}
	if withHistory {
		o.History = append([]models.OrderStatusHistory(nil), f.history...)
	}
	return o, nil
}

func (f *fakeStore) ListCustomerOrders(_ context.Context, customerID uuid.UUID, page, perPage int) (models.Page[models.Order], error) {
	var rows []models.Order
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			rows = append(rows, *o)
		}
	}
	return models.NewPage(rows, page, perPage, int64(len(rows))), nil
}

func (f *fakeStore) TransitionOrder(_ context.Context, orderID int64, from, to models.OrderStatus, by uuid.UUID) (bool, error) {
	o := f.orders[orderID]
	if f.loseRace || o.Status != from {
		return false, nil
	}
	o.Status = to
	f.history = append(f.history, models.OrderStatusHistory{Status: to, ChangedBy: by})
	return true, nil
}

func (f *fakeStore) RateOrder(_ context.Context, orderID int64, customerID uuid.UUID, r repository.Ratings) (bool, error) {
	f.rateCalls++
	o := f.orders[orderID]
	if o.CustomerID != customerID || o.Status != models.StatusDelivered {
		return false, nil
	}
	if r.Driver != nil {
		o.DriverRating = r.Driver
	}
	if r.Restaurant != nil {
		o.RestaurantRating = r.Restaurant
	}
	if o.RatingComment == nil {
		o.RatingComment = r.Comment
	}
	return true, nil
}

func (f *fakeStore) AssignDriver(_ context.Context, orderID, driverID int64) (bool, error) {
	o := f.orders[orderID]
	switch o.Status {
	case models.StatusOutForDelivery, models.StatusDelivered, models.StatusCancelled:
		return false, nil
	}
	o.DriverID = &driverID
	return true, nil
}

func (f *fakeStore) GetDriver(_ context.Context, id int64) (*models.Driver, error) {
	d, ok := f.drivers[id]
	if !ok {
		return nil, apperr.NotFound("Driver not found.")
	}
	return d, nil
}

func (f *fakeStore) GetDriverByUserID(_ context.Context, userID uuid.UUID) (*models.Driver, error) {
	for _, d := range f.drivers {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, apperr.NotFound("Driver not found.")
}

func (f *fakeStore) CreateDriver(_ context.Context, d *models.Driver) error {
	if _, err := f.GetDriverByUserID(context.Background(), d.UserID); err == nil {
		return apperr.Conflict("You are already registered as a driver.", nil)
	}
	d.ID = f.id()
	f.drivers[d.ID] = d
	return nil
}

func (f *fakeStore) ApproveDriver(_ context.Context, id int64) (*models.Driver, error) {
	d, ok := f.drivers[id]
	if !ok {
		return nil, apperr.NotFound("Driver not found.")
	}
	d.IsApproved = true
	f.roles[d.UserID] = append(f.roles[d.UserID], models.RoleDriver)
	return d, nil
}

func (f *fakeStore) UpdateDriverStatus(ctx context.Context, userID uuid.UUID, available bool, lat, lng *float64) (*models.Driver, error) {
	d, err := f.GetDriverByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.IsAvailable = available
	if lat != nil && lng != nil {
		d.Latitude, d.Longitude = lat, lng
	}
	return d, nil
}

func (f *fakeStore) SaveReview(_ context.Context, r *models.Review) (*models.Restaurant, error) {
	rest, ok := f.restaurants[r.RestaurantID]
	if !ok {
		return nil, apperr.NotFound("Restaurant not found.")
	}
	if f.reviews[r.RestaurantID] == nil {
		f.reviews[r.RestaurantID] = map[uuid.UUID]*models.Review{}
	}
	r.ID = f.id()
	f.reviews[r.RestaurantID][r.UserID] = r
	sum := 0
	for _, rv := range f.reviews[r.RestaurantID] {
		sum += rv.Rating
	}
	rest.ReviewCount = len(f.reviews[r.RestaurantID])
	rest.Rating = float64(sum) / float64(rest.ReviewCount)
	return rest, nil
}

func (f *fakeStore) RemoveReview(_ context.Context, restaurantID int64, userID uuid.UUID) (bool, error) {
	if _, ok := f.reviews[restaurantID][userID]; !ok {
		return false, nil
	}
	delete(f.reviews[restaurantID], userID)
	return true, nil
}

func (f *fakeStore) ListReviews(_ context.Context, restaurantID int64, page, perPage int) (models.Page[models.Review], error) {
	var rows []models.Review
	for _, rv := range f.reviews[restaurantID] {
		rows = append(rows, *rv)
	}
	return models.NewPage(rows, page, perPage, int64(len(rows))), nil
}

func (f *fakeStore) CreateUserWithRole(_ context.Context, u *models.User, role string) error {
	if _, ok := f.users[u.Email]; ok {
		return apperr.Field("email", "The email has already been taken.")
	}
	u.ID = uuid.New()
	f.users[u.Email] = u
	f.roles[u.ID] = []string{role}
	return nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, apperr.NotFound("User not found.")
	}
	return u, nil
}

func (f *fakeStore) GetUserRoles(_ context.Context, userID uuid.UUID) ([]string, error) {
	return f.roles[userID], nil
}

func (f *fakeStore) AssignRole(_ context.Context, userID uuid.UUID, role string) error {
	for _, r := range f.roles[userID] {
		if r == role {
			return nil
		}
	}
	f.roles[userID] = append(f.roles[userID], role)
	return nil
}

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
	calls  []publishCall
}

// publishCall is the context state seen when Publish ran.
type publishCall struct {
	err         error
	deadline    time.Time
	hasDeadline bool
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	deadline, ok := ctx.Deadline()
	p.calls = append(p.calls, publishCall{err: ctx.Err(), deadline: deadline, hasDeadline: ok})
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
