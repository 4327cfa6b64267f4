// Package smtp отправляет письма через SMTP сервер.
package smtp

import (
	"context"
	"io"
)

// Client сессия с SMTP сервером, открытая Transport.Connect.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface открывает сессии и знает адрес отправителя.
type TransportInterface interface {
	Connect(ctx context.Context) (Client, error)
	Sender() string
}
