// Команда contrarianctl обслуживает базу и учетные записи: миграции, тарифы,
// сессии и пользователей.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
