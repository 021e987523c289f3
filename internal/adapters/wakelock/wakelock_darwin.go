package wakelock

func inhibit() (func() error, error) {
	return holdWith("caffeinate", "-i")
}
