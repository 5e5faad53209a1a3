package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Reverse proxy com throttle por identificador",
	Long: `gateway encaminha requisições para um upstream e aplica o throttle
(limite fixo por intervalo) antes do proxy.

Configuração: arquivo YAML (--config), variáveis de ambiente (THROTTLE_*) e defaults.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "arquivo de configuração YAML (opcional)")
	rootCmd.AddCommand(serveCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
