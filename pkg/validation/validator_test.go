package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name     string `json:"name" validate:"required,max=8"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"strongpwd"`
}

var policy = PasswordPolicy{MinLength: 6, RequireNonAlnum: true, RequireDigit: true, RequireLowercase: true, RequireUppercase: true}

func TestPasswordPolicy(t *testing.T) {
	v := New(policy)
	cases := []struct {
		pwd  string
		want string
	}{
		{"Secr3t!", ""},
		{"Sé3!ab", ""},
		{"", "is required"},
		{"S3c!", "must be at least 6 characters long"},
		{"Secret1", "must have at least one non letter or digit character"},
		{"Secret!", "must have at least one digit ('0'-'9')"},
		{"SECR3T!", "must have at least one lowercase ('a'-'z')"},
		{"secr3t!", "must have at least one uppercase ('A'-'Z')"},
	}
	for _, tc := range cases {
		t.Run(tc.pwd, func(t *testing.T) {
			err := v.Var(tc.pwd, "strongpwd")
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.want, ToDetails(err)["value"])
		})
	}
}

func TestRelaxedPolicy(t *testing.T) {
	v := New(PasswordPolicy{MinLength: 3})
	assert.NoError(t, v.Var("abc", "strongpwd"))
	assert.Error(t, v.Var("ab", "strongpwd"))
}

func TestToDetailsUsesJSONNames(t *testing.T) {
	v := New(policy)
	err := v.Struct(signup{Name: "far too long", Email: "nope", Password: "Secr3t!"})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, map[string]string{
		"name":  "must be at most 8 characters long",
		"email": "must be a valid email",
	}, details)
	assert.Equal(t, "email: must be a valid email; name: must be at most 8 characters long", FormatDetails(details))
}

func TestToDetailsFallback(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("x")))
}
