package signup

import (
	"context"
	"net/http"
	"net/http/httptest"
	c "resetme/internal/core/domain/common"
	"resetme/internal/core/domain/user"
	signupwithemail "resetme/internal/core/services/sign_up_with_email"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	err   error
	input *signupwithemail.Input
}

func (s *stubService) Run(
	ctx context.Context, input signupwithemail.Input,
) (result signupwithemail.Result, err error) {
	s.input = &input
	return result, s.err
}

func TestSignUpHandler(t *testing.T) {
	cases := []struct {
		id             string
		body           string
		minLength      int
		serviceErr     error
		expectedStatus int
	}{
		{
			id:             "valid input",
			body:           `{"email": "test@test.test", "password": "password"}`,
			minLength:      6,
			expectedStatus: http.StatusCreated,
		},
		{
			id:             "invalid json",
			body:           `[]`,
			minLength:      6,
			expectedStatus: http.StatusBadRequest,
		},
		{
			id:             "invalid email",
			body:           `{"email": "not-an-email", "password": "password"}`,
			minLength:      6,
			expectedStatus: http.StatusBadRequest,
		},
		{
			id:             "password below configured minimum",
			body:           `{"email": "test@test.test", "password": "123456789"}`,
			minLength:      10,
			expectedStatus: http.StatusBadRequest,
		},
		{
			id:             "password exactly configured minimum",
			body:           `{"email": "test@test.test", "password": "1234567890"}`,
			minLength:      10,
			expectedStatus: http.StatusCreated,
		},
		{
			id:             "email already exists",
			body:           `{"email": "test@test.test", "password": "password"}`,
			minLength:      6,
			serviceErr:     user.ErrEmailAlreadyExists,
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			stub := &stubService{err: testcase.serviceErr}
			handler := New(stub, testcase.minLength)

			req := httptest.NewRequest(
				http.MethodPost,
				"/auth/signup",
				strings.NewReader(testcase.body),
			)
			rw := httptest.NewRecorder()
			handler.ServeHTTP(rw, req)

			assert.Equal(t, testcase.expectedStatus, rw.Code)
			if testcase.expectedStatus == http.StatusCreated {
				require.NotNil(t, stub.input)
				assert.Equal(t, c.NewEmail("test@test.test"), stub.input.Email)
			}
		})
	}
}
