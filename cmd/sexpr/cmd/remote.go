package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/sexpr/foundation/sexpr/token"
	"github.com/msto63/sexpr/internal/diagnostic"
	"github.com/msto63/sexpr/internal/service"
	grpcpkg "github.com/msto63/sexpr/pkg/core/grpc"
	"github.com/msto63/sexpr/pkg/core/logging"
)

var remoteAddr string

var remoteCmd = &cobra.Command{
	Use:   "remote <expression>",
	Short: "Converts an expression through a running server",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemote,
}

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.Flags().StringVar(&remoteAddr, "addr", "", "server address (default: localhost and the configured gRPC port)")
}

func runRemote(cmd *cobra.Command, args []string) error {
	addr := remoteAddr
	if addr == "" {
		addr = fmt.Sprintf("localhost:%d", appConfig.Server.GRPC.Port)
	}

	clientCfg := grpcpkg.DefaultClientConfig(addr)
	clientCfg.Logger = logging.New("grpc-client")

	client, err := service.Dial(clientCfg)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), clientCfg.Timeout)
	defer cancel()

	reply, err := client.Convert(ctx, args[0])
	if err != nil {
		return err
	}

	if !reply.OK {
		errOut := cmd.ErrOrStderr()
		if reply.Error != nil {
			span := token.Span{Start: reply.Error.Start, End: reply.Error.End}
			diagnostic.RenderSpan(errOut, args[0], span, diagnosticOptions())
			fmt.Fprintf(errOut, "Error: %s\n", reply.Error.Message)
		}
		return errReported
	}

	fmt.Fprintln(cmd.OutOrStdout(), reply.SExpr)
	return nil
}
