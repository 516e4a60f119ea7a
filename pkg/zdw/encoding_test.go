package zdw

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeNumericUnsigned(t *testing.T) {
	v, err := encodeNumericText(LONG, []byte("4000000000"))
	require.Nil(t, err)
	require.Equal(t, "4000000000", string(decodeNumericText(LONG, v)))
}

func TestEncodeDecodeNumericSignedNegative(t *testing.T) {
	v, err := encodeNumericText(TINY_SIGNED, []byte("-5"))
	require.Nil(t, err)
	require.Equal(t, "-5", string(decodeNumericText(TINY_SIGNED, v)))
}

func TestEncodeNumericRejectsGarbage(t *testing.T) {
	_, err := encodeNumericText(LONG, []byte("not-a-number"))
	require.NotNil(t, err)
	require.Equal(t, BadParameter, err.Kind)
}

func TestMaskForWidthTruncatesToNativeWidth(t *testing.T) {
	v, err := encodeNumericText(TINY_SIGNED, []byte("-1"))
	require.Nil(t, err)
	require.EqualValues(t, 0xFF, v)
}

func TestEncodeDecodeCharPlain(t *testing.T) {
	v := encodeCharText([]byte("x"))
	require.Equal(t, "x", string(decodeCharText(v)))
}

func TestEncodeDecodeCharEscaped(t *testing.T) {
	v := encodeCharText([]byte{'\\', 't'})
	require.Equal(t, []byte{'\\', 't'}, decodeCharText(v))
}

func TestLegacyDecimalText(t *testing.T) {
	require.Equal(t, "1.000000000000", string(legacyDecimalText(1e12)))
	require.Equal(t, "0.500000000000", string(legacyDecimalText(5e11)))
}
