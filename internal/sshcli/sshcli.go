// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sshcli runs shell commands on lab nodes over SSH.
package sshcli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/golang/glog"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Config describes how to reach a node.
type Config struct {
	// Target is host:port.  Port 22 is used when it is missing.
	Target   string
	Username string
	Password string
	// KeyFile is an optional private key used before password auth.
	KeyFile string
	// SkipVerify disables host key checking.
	SkipVerify bool
	Timeout    time.Duration
}

var knownHostsFiles = []string{
	"$HOME/.ssh/known_hosts",
	"/etc/ssh/ssh_known_hosts",
}

// knownHostsCallback checks the user and system SSH known_hosts.
func knownHostsCallback() (ssh.HostKeyCallback, error) {
	var files []string
	for _, file := range knownHostsFiles {
		file = os.ExpandEnv(file)
		if _, err := os.Stat(file); err == nil {
			files = append(files, file)
		}
	}
	return knownhosts.New(files...)
}

// For every question asked in an interactive login ssh session, set the answer to user password.
func sshInteractive(password string) ssh.KeyboardInteractiveChallenge {
	return func(_, _ string, questions []string, _ []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for n := range questions {
			answers[n] = password
		}
		return answers, nil
	}
}

func (c Config) clientConfig() (*ssh.ClientConfig, error) {
	cc := &ssh.ClientConfig{
		User:    c.Username,
		Timeout: c.Timeout,
	}
	if c.KeyFile != "" {
		pem, err := os.ReadFile(c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("could not read key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("could not parse key %s: %w", c.KeyFile, err)
		}
		cc.Auth = append(cc.Auth, ssh.PublicKeys(signer))
	}
	cc.Auth = append(cc.Auth,
		ssh.Password(c.Password),
		ssh.KeyboardInteractive(sshInteractive(c.Password)),
	)
	if c.SkipVerify {
		cc.HostKeyCallback = ssh.InsecureIgnoreHostKey()
	} else {
		cb, err := knownHostsCallback()
		if err != nil {
			return nil, err
		}
		cc.HostKeyCallback = cb
	}
	return cc, nil
}

func (c Config) target() string {
	if _, _, err := net.SplitHostPort(c.Target); err != nil {
		return net.JoinHostPort(c.Target, "22")
	}
	return c.Target
}

// Client runs commands over one SSH connection.
type Client struct {
	ssh *ssh.Client
}

// Dial connects to the node described by cfg.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	cc, err := cfg.clientConfig()
	if err != nil {
		return nil, err
	}
	target := cfg.target()
	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", target)
	if err != nil {
		return nil, fmt.Errorf("could not dial %s: %w", target, err)
	}
	sc, chans, reqs, err := ssh.NewClientConn(conn, target, cc)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s failed: %w", target, err)
	}
	glog.V(1).Infof("connected to %s as %s", target, cfg.Username)
	return New(ssh.NewClient(sc, chans, reqs)), nil
}

// New wraps an established SSH client.
func New(sc *ssh.Client) *Client {
	return &Client{ssh: sc}
}

// SendCommand runs cmd in a new session and returns its combined output.
// When ctx is done the session is closed and ctx.Err() is returned.
func (c *Client) SendCommand(ctx context.Context, cmd string) (string, error) {
	sess, err := c.ssh.NewSession()
	if err != nil {
		return "", fmt.Errorf("could not create session: %w", err)
	}
	defer sess.Close()

	type result struct {
		out []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		out, err := sess.CombinedOutput(cmd)
		ch <- result{out, err}
	}()

	select {
	case r := <-ch:
		glog.V(2).Infof("%s: %q", cmd, r.out)
		if r.err != nil {
			var exitErr *ssh.ExitError
			if errors.As(r.err, &exitErr) {
				return string(r.out), fmt.Errorf("command %q exited with status %d: %w", cmd, exitErr.ExitStatus(), r.err)
			}
			return string(r.out), fmt.Errorf("could not execute command %q: %w", cmd, r.err)
		}
		return string(r.out), nil
	case <-ctx.Done():
		sess.Signal(ssh.SIGKILL)
		return "", ctx.Err()
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.ssh.Close()
}
