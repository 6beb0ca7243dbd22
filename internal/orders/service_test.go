package orders

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clickbrilhe/storefront-backend/pkg/backend"
	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
)

type fakeBackend struct {
	mu sync.Mutex

	userResp *backend.User
	userErr  error
	userReqs []backend.CreateUserRequest

	orderErrByProduct map[string]error
	orderReqs         []backend.CreateOrderRequest
	nextOrderID       int64

	emailErr  error
	emailReqs []backend.SendEmailRequest
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		userResp:          &backend.User{ID: 42, Name: "Heitor A B"},
		orderErrByProduct: map[string]error{},
		nextOrderID:       100,
	}
}

func (f *fakeBackend) CreateUser(_ context.Context, req backend.CreateUserRequest) (*backend.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userReqs = append(f.userReqs, req)
	return f.userResp, f.userErr
}

func (f *fakeBackend) CreateOrder(_ context.Context, req backend.CreateOrderRequest) (*backend.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderReqs = append(f.orderReqs, req)
	if err := f.orderErrByProduct[req.ProductID]; err != nil {
		return nil, err
	}
	f.nextOrderID++
	return &backend.Order{ID: f.nextOrderID}, nil
}

func (f *fakeBackend) SendEmail(_ context.Context, req backend.SendEmailRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emailReqs = append(f.emailReqs, req)
	return f.emailErr
}

func submitInput() SubmitInput {
	return SubmitInput{
		Customer: Customer{
			Name:  "Heitor A B",
			CPF:   "52998224725",
			CEP:   "01001000",
			Email: "heitor@example.com",
		},
		Lines: []LineItem{
			{ProductID: "lamp-01", Name: "Abajur Cristal", Quantity: 2},
			{ProductID: "vase-02", Name: "Vaso Decorativo", Quantity: 1},
		},
		FreightValue: decimal.NewFromInt(25),
	}
}

func TestSubmitPlacesOneOrderPerLine(t *testing.T) {
	api := newFakeBackend()
	svc, err := NewService(api, nil, nil)
	require.NoError(t, err)

	result, err := svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	assert.Equal(t, int64(42), result.UserID)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, result.Failed)

	require.Len(t, api.userReqs, 1)
	user := api.userReqs[0]
	assert.Equal(t, "52998224725", user.CPF)
	assert.Equal(t, "heitor@example.com", user.Login)
	assert.Equal(t, "1990-05-10", user.BirthDate)
	assert.Equal(t, "comum", user.UserType)

	require.Len(t, api.orderReqs, 2)
	for _, req := range api.orderReqs {
		assert.Equal(t, int64(42), req.UserID)
		assert.True(t, req.FreightValue.Equal(decimal.NewFromInt(25)))
	}

	require.Len(t, api.emailReqs, 2)
	assert.Equal(t, "Confirmação de pedido", api.emailReqs[0].Subject)
	assert.Equal(t, "heitor@example.com", api.emailReqs[0].To)
}

func TestSubmitReportsPartialFailureWithLineDetail(t *testing.T) {
	api := newFakeBackend()
	api.orderErrByProduct["vase-02"] = fmt.Errorf("status 500: sem estoque")
	svc, err := NewService(api, nil, nil)
	require.NoError(t, err)

	result, err := svc.Submit(context.Background(), submitInput())
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodePartialSubmission))

	require.NotNil(t, result)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)

	byProduct := map[string]LineResult{}
	for _, lr := range result.Lines {
		byProduct[lr.ProductID] = lr
	}
	assert.Empty(t, byProduct["lamp-01"].Error)
	assert.NotZero(t, byProduct["lamp-01"].OrderID)
	assert.Contains(t, byProduct["vase-02"].Error, "sem estoque")

	details := pkgerrors.As(err).Details()
	require.NotNil(t, details)
	assert.Equal(t, result, details)
}

func TestSubmitAllLinesFailingIsNotPartial(t *testing.T) {
	api := newFakeBackend()
	api.orderErrByProduct["lamp-01"] = fmt.Errorf("status 500")
	api.orderErrByProduct["vase-02"] = fmt.Errorf("status 500")
	svc, err := NewService(api, nil, nil)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), submitInput())
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeSubmission))
	assert.False(t, pkgerrors.Is(err, pkgerrors.CodePartialSubmission))
}

func TestSubmitStopsWhenUserUpsertFails(t *testing.T) {
	api := newFakeBackend()
	api.userErr = fmt.Errorf("status 502")
	svc, err := NewService(api, nil, nil)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), submitInput())
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeSubmission))
	assert.Empty(t, api.orderReqs)
}

func TestSubmitStopsWhenUserHasNoID(t *testing.T) {
	api := newFakeBackend()
	api.userResp = &backend.User{}
	svc, err := NewService(api, nil, nil)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), submitInput())
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeSubmission))
	assert.Empty(t, api.orderReqs)
}

func TestSubmitEmailFailureDoesNotFailOrder(t *testing.T) {
	api := newFakeBackend()
	api.emailErr = fmt.Errorf("smtp down")
	svc, err := NewService(api, nil, nil)
	require.NoError(t, err)

	result, err := svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
}

func TestSubmitRequiresLines(t *testing.T) {
	svc, err := NewService(newFakeBackend(), nil, nil)
	require.NoError(t, err)

	input := submitInput()
	input.Lines = nil
	_, err = svc.Submit(context.Background(), input)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}
