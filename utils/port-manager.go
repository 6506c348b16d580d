package utils

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// NormalizeListenAddress turns a bare port into ":port" and checks that the
// port part of host:port is numeric.
func NormalizeListenAddress(addr string) (string, error) {
	if !strings.Contains(addr, ":") {
		port, err := strconv.Atoi(addr)
		if err != nil {
			return "", fmt.Errorf("invalid port: %v", err)
		}
		return fmt.Sprintf(":%d", port), nil
	}

	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("invalid listen address %q: %v", addr, err)
	}
	if _, err := strconv.Atoi(portStr); err != nil {
		return "", fmt.Errorf("invalid port: %v", err)
	}
	return addr, nil
}

// ClientAddress returns the address a local client should dial for a
// listen address.
func ClientAddress(addr string) (string, error) {
	addr, err := NormalizeListenAddress(addr)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return addr, nil
}

// CheckListenAddress fails early when the port of addr is already taken.
func CheckListenAddress(addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %v", addr, err)
	}
	port, _ := strconv.Atoi(portStr)
	if host == "localhost" {
		host = "127.0.0.1"
	}
	if !IsPortAvailable(host, port) {
		return fmt.Errorf("port %d is already in use on %s", port, addr)
	}
	return nil
}

func IsPortAvailable(host string, port int) bool {
	Verbose("Checking if port %d is available on %s", port, host)
	listener, err := net.ListenTCP("tcp4", &net.TCPAddr{IP: net.ParseIP(host), Port: port})
	if err != nil {
		Verbose("error: %v", err)
		return false
	}

	defer listener.Close()
	return true
}
