// Команда adminhash выводит хеш пароля оператора для переменной ADMIN_PASSWORD_HASH.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ivanpodgorny/printshop/internal/security"
)

func main() {
	password := strings.Join(os.Args[1:], " ")
	if password == "" {
		s := bufio.NewScanner(os.Stdin)
		if s.Scan() {
			password = s.Text()
		}

		if err := s.Err(); err != nil {
			log.Fatal(err)
		}
	}

	if password == "" {
		log.Fatal("пароль не задан")
	}

	hash, err := security.NewArgonHasher(security.DefaultHashConfig()).Hash(password)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(hash)
}
