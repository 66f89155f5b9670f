package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/universal-crud/backend-go/internal/auth"
	"github.com/universal-crud/backend-go/internal/models"
	"github.com/universal-crud/backend-go/internal/repository"
	"github.com/universal-crud/backend-go/internal/respond"
	"github.com/universal-crud/backend-go/internal/service"
)

// In-memory repositories backing the handler tests. They implement the same
// interfaces as the SQL repositories, including the sentinel errors the
// services branch on.

type fakeUserRepo struct {
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, username, email, passwordHash string, firstName, lastName *string) (int64, error) {
	f.nextID++
	now := time.Now()
	f.users[f.nextID] = &models.User{
		ID:        f.nextID,
		Username:  username,
		Email:     email,
		Password:  passwordHash,
		FirstName: firstName,
		LastName:  lastName,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return f.nextID, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) FindByUsernameOrEmail(_ context.Context, identifier string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == identifier || u.Email == identifier {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) UsernameTaken(_ context.Context, username string, excludeID int64) (bool, error) {
	for _, u := range f.users {
		if u.ID != excludeID && u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) EmailTaken(_ context.Context, email string, excludeID int64) (bool, error) {
	for _, u := range f.users {
		if u.ID != excludeID && u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]models.User, int64, error) {
	var matched []models.User
	for _, u := range f.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Search != "" && !strings.Contains(u.Username, filter.Search) && !strings.Contains(u.Email, filter.Search) {
			continue
		}
		matched = append(matched, *u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return pageSlice(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (f *fakeUserRepo) Update(_ context.Context, id int64, params repository.UpdateUserParams) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if params.Username != nil {
		u.Username = *params.Username
	}
	if params.Email != nil {
		u.Email = *params.Email
	}
	if params.FirstName != nil {
		u.FirstName = params.FirstName
	}
	if params.LastName != nil {
		u.LastName = params.LastName
	}
	if params.Role != nil {
		u.Role = *params.Role
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = passwordHash
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeProductRepo struct {
	nextID   int64
	products map[int64]*models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*models.Product)}
}

func (f *fakeProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	var matched []models.Product
	for _, p := range f.products {
		if filter.CategoryID != 0 && (p.CategoryID == nil || *p.CategoryID != filter.CategoryID) {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(p.Name, filter.Search) {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return pageSlice(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (f *fakeProductRepo) ListByCategory(_ context.Context, categoryID int64, page, limit int) ([]models.Product, int64, error) {
	var matched []models.Product
	for _, p := range f.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID && p.Status == models.StatusActive {
			matched = append(matched, *p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return pageSlice(matched, page, limit), int64(len(matched)), nil
}

func (f *fakeProductRepo) FindByID(_ context.Context, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProductRepo) Create(_ context.Context, params repository.CreateProductParams) (int64, error) {
	f.nextID++
	now := time.Now()
	f.products[f.nextID] = &models.Product{
		ID:          f.nextID,
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		Quantity:    params.Quantity,
		CategoryID:  params.CategoryID,
		ImageURL:    params.ImageURL,
		Status:      models.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return f.nextID, nil
}

func (f *fakeProductRepo) Update(_ context.Context, id int64, params repository.UpdateProductParams) error {
	p, ok := f.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	if params.Name != nil {
		p.Name = *params.Name
	}
	if params.Description != nil {
		p.Description = params.Description
	}
	if params.Price != nil {
		p.Price = *params.Price
	}
	if params.Quantity != nil {
		p.Quantity = *params.Quantity
	}
	if params.CategoryID != nil {
		p.CategoryID = params.CategoryID
	}
	if params.ImageURL != nil {
		p.ImageURL = params.ImageURL
	}
	if params.Status != nil {
		p.Status = *params.Status
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) CountByCategory(_ context.Context, categoryID int64) (int64, error) {
	var count int64
	for _, p := range f.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

type fakeCategoryRepo struct {
	nextID     int64
	categories map[int64]*models.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[int64]*models.Category)}
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCategoryRepo) FindByID(_ context.Context, id int64) (*models.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCategoryRepo) Create(_ context.Context, name string, description *string) (int64, error) {
	f.nextID++
	f.categories[f.nextID] = &models.Category{
		ID:          f.nextID,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
	return f.nextID, nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, id int64, name, description *string) error {
	c, ok := f.categories[id]
	if !ok {
		return repository.ErrNotFound
	}
	if name != nil {
		c.Name = *name
	}
	if description != nil {
		c.Description = description
	}
	return nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeCategoryRepo) NameTaken(_ context.Context, name string, excludeID int64) (bool, error) {
	for _, c := range f.categories {
		if c.ID != excludeID && c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func pageSlice[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// testEnv wires real services and handlers over the in-memory repositories.
type testEnv struct {
	users      *fakeUserRepo
	products   *fakeProductRepo
	categories *fakeCategoryRepo
	tokens     *auth.TokenManager

	auth     *AuthHandler
	user     *UserHandler
	product  *ProductHandler
	category *CategoryHandler
}

func newTestEnv() *testEnv {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &testEnv{
		users:      newFakeUserRepo(),
		products:   newFakeProductRepo(),
		categories: newFakeCategoryRepo(),
		tokens:     auth.NewTokenManager("test-secret", time.Hour),
	}

	userSvc := service.NewUserService(env.users, env.tokens, logger)
	productSvc := service.NewProductService(env.products, env.categories, logger)
	categorySvc := service.NewCategoryService(env.categories, env.products, logger)

	env.auth = NewAuthHandler(userSvc)
	env.user = NewUserHandler(userSvc)
	env.product = NewProductHandler(productSvc)
	env.category = NewCategoryHandler(categorySvc)
	return env
}

// seedUser inserts a user with a bcrypt-hashed password and the given role.
func (env *testEnv) seedUser(t *testing.T, username, password, role string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	id, err := env.users.Create(context.Background(), username, username+"@example.com", string(hashed), nil, nil)
	require.NoError(t, err)
	env.users.users[id].Role = role

	user, err := env.users.FindByID(context.Background(), id)
	require.NoError(t, err)
	return user
}

func (env *testEnv) seedCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	id, err := env.categories.Create(context.Background(), name, nil)
	require.NoError(t, err)
	category, err := env.categories.FindByID(context.Background(), id)
	require.NoError(t, err)
	return category
}

func (env *testEnv) seedProduct(t *testing.T, name string, price float64, categoryID *int64) *models.Product {
	t.Helper()
	id, err := env.products.Create(context.Background(), repository.CreateProductParams{
		Name:       name,
		Price:      price,
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	product, err := env.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return product
}

// doRequest invokes a handler directly, bypassing the router. Path variables
// and the authenticated principal are injected the way the router middleware
// would.
func doRequest(t *testing.T, h http.HandlerFunc, method, target string, body any, vars map[string]string, principal *auth.Principal) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	if principal != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), principal))
	}

	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

// decodeEnvelope unmarshals a recorded response body.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) respond.Envelope {
	t.Helper()
	var env respond.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// dataMap returns the data field of a decoded envelope as a map.
func dataMap(t *testing.T, env respond.Envelope) map[string]any {
	t.Helper()
	m, ok := env.Data.(map[string]any)
	require.True(t, ok, "data is not an object: %#v", env.Data)
	return m
}

func principalFor(user *models.User) *auth.Principal {
	return &auth.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}
}
