package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pacuit/conferencia/internal/auth"
)

// Gera o valor de ADMIN_PASSWORD_HASH; sem argumento lê a senha da entrada padrão.
func main() {
	password := ""
	if len(os.Args) >= 2 {
		password = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "usage: hashpass <password>  (ou echo senha | hashpass)")
			os.Exit(1)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if password == "" {
		fmt.Fprintln(os.Stderr, "senha vazia")
		os.Exit(1)
	}

	hash, err := auth.Hash(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
