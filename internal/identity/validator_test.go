package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/clickbrilhe/storefront-backend/pkg/errors"
	"github.com/clickbrilhe/storefront-backend/pkg/receita"
)

func TestValidateAcceptsKnownGoodCPFs(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"529.982.247-25", "52998224725"},
		{"52998224725", "52998224725"},
		{"111.444.777-35", "11144477735"},
		{" 111 444 777 35 ", "11144477735"},
		{"529,982,247/25", "52998224725"},
		{"cpf: 529.982.247-25", "52998224725"},
	}
	for _, tc := range cases {
		got, err := Validate(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got)
	}
}

func TestValidateRejectsBadChecksum(t *testing.T) {
	cases := []string{
		"529.982.247-26",
		"111.444.777-34",
		"12345678900",
	}
	for _, raw := range cases {
		_, err := Validate(raw)
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), raw)
	}
}

func TestValidateRejectsRepeatedDigits(t *testing.T) {
	for _, raw := range []string{"000.000.000-00", "111.111.111-11", "99999999999"} {
		_, err := Validate(raw)
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), raw)
	}
}

func TestValidateRejectsMalformedInput(t *testing.T) {
	cases := []string{
		"",
		"123",
		"529.982.247-255",
		"529.982.247-2a",
		"abc",
	}
	for _, raw := range cases {
		_, err := Validate(raw)
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), raw)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "529.982.247-25", Format("52998224725"))
	assert.Equal(t, "123", Format("123"))
}

// The verifier can equivalently be computed as (sum*10) mod 11 with ten
// mapped to zero; both closures of the formula must agree for every
// possible weighted sum.
func TestCheckDigitFormulaEquivalence(t *testing.T) {
	for sum := 0; sum <= 330; sum++ {
		canonical := 11 - sum%11
		if canonical >= 10 {
			canonical = 0
		}
		alternate := (sum * 10) % 11
		if alternate >= 10 {
			alternate = 0
		}
		assert.Equal(t, canonical, alternate, "sum %d", sum)
	}
}

func TestServiceResolveReturnsStubPerson(t *testing.T) {
	svc, err := NewService(receita.NewStubResolver())
	require.NoError(t, err)

	person, err := svc.Resolve(context.Background(), "529.982.247-25")
	require.NoError(t, err)
	require.NotNil(t, person)
	assert.Equal(t, "Heitor A B", person.Name)
	assert.Equal(t, "52998224725", person.IDNumber)
}

func TestServiceResolveRejectsInvalidCPFBeforeLookup(t *testing.T) {
	svc, err := NewService(receita.NewStubResolver())
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), "529.982.247-26")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestNewServiceRequiresResolver(t *testing.T) {
	_, err := NewService(nil)
	assert.Error(t, err)
}
