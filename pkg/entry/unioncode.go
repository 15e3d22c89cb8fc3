package entry

// base62Alphabet matches the codes printed by earlier releases of the tool.
const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// UnionCode returns base62(sec * (2^32 - 1) + usec). Distinct (sec, usec)
// pairs with usec below 2^32 - 1 always produce distinct codes.
func UnionCode(sec, usec uint32) string {
	return encodeBase62(uint64(sec)*uint64(^uint32(0)) + uint64(usec))
}

func encodeBase62(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [11]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = base62Alphabet[n%62]
		n /= 62
	}
	return string(buf[i:])
}
