package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNumericCode(t *testing.T) {
	code, err := generateNumericCode(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}

	// 非法长度回退到 6 位
	code, err = generateNumericCode(0)
	require.NoError(t, err)
	assert.Len(t, code, 6)
}

func TestLastDigits(t *testing.T) {
	assert.Equal(t, "5678", lastDigits("13912345678", 4))
	assert.Equal(t, "123", lastDigits("123", 4))
	assert.Equal(t, "otp:13912345678", otpKey("13912345678"))
}
