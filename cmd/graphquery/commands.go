package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pivot-graph-be/pkg/events"
	pktNats "pivot-graph-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func openCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a session and print its id",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := openSession(userID)
			if err != nil {
				return err
			}
			color.Green("Session: %s", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to load")
	return cmd
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get SESSION PATH...",
		Short: `Query paths, e.g. get $S '["pivots",{"from":0,"to":1},"length"]'`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := make([]json.RawMessage, 0, len(args)-1)
			for _, p := range args[1:] {
				if !json.Valid([]byte(p)) {
					return fmt.Errorf("path %q is not JSON", p)
				}
				paths = append(paths, json.RawMessage(p))
			}
			res, err := get(args[0], paths...)
			if err != nil {
				return err
			}
			prettyPrint(res)
			return nil
		},
	}
}

func callCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call SESSION PATH [ARGS]",
		Short: `Invoke a call route, e.g. call $S '["pivots","insert"]' '[0]'`,
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !json.Valid([]byte(args[1])) {
				return fmt.Errorf("path %q is not JSON", args[1])
			}
			var callArgs []interface{}
			if len(args) == 3 {
				if err := json.Unmarshal([]byte(args[2]), &callArgs); err != nil {
					return fmt.Errorf("args must be a JSON list: %w", err)
				}
			}
			res, err := call(args[0], json.RawMessage(args[1]), callArgs...)
			if err != nil {
				return err
			}
			prettyPrint(res)
			return nil
		},
	}
}

// demoCmd walks through one investigation end to end.
func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Open a session, add a pivot, search it and save",
		RunE: func(cmd *cobra.Command, args []string) error {
			color.Cyan("🚀 Pivot graph walkthrough")

			step("1. Open session")
			session, err := openSession("")
			if err != nil {
				return err
			}
			color.Green("Session: %s", session)

			step("2. Read the app root")
			res, err := get(session,
				json.RawMessage(`[["id","title","url","total"]]`),
				json.RawMessage(`["currentUser",["id","name"]]`),
				json.RawMessage(`["pivots","length"]`),
			)
			if err != nil {
				return err
			}
			prettyPrint(res)

			step("3. Insert a pivot at the end")
			if res, err = call(session, json.RawMessage(`["pivots","insert"]`)); err != nil {
				return err
			}
			prettyPrint(res)

			pivotID, err := insertedPivot(res)
			if err != nil {
				return err
			}

			step("4. Fill pivot %s", pivotID)
			setField, _ := json.Marshal([]string{"pivotsById", pivotID, "setField"})
			for _, field := range [][2]string{{"Mode", "all"}, {"Search", "error"}} {
				if res, err = call(session, setField, field[0], field[1]); err != nil {
					return err
				}
			}
			prettyPrint(res)

			step("5. Search the last pivot")
			if res, err = call(session, json.RawMessage(`["pivots","searchPivot"]`)); err != nil {
				return err
			}
			prettyPrint(res)

			step("6. Save the active investigation")
			if res, err = call(session, json.RawMessage(`["currentUser","activeInvestigation","save"]`)); err != nil {
				return err
			}
			prettyPrint(res)

			color.Green("\n✅ Done")
			return nil
		},
	}
}

// insertedPivot finds the pivot reference in an insert delta.
func insertedPivot(raw json.RawMessage) (string, error) {
	var res struct {
		Values []struct {
			Value json.RawMessage `json:"value"`
		} `json:"values"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", err
	}
	for _, v := range res.Values {
		var ref struct {
			Type  string   `json:"$type"`
			Value []string `json:"value"`
		}
		if json.Unmarshal(v.Value, &ref) != nil {
			continue
		}
		if ref.Type == "ref" && len(ref.Value) == 2 && ref.Value[0] == "pivotsById" {
			return ref.Value[1], nil
		}
	}
	return "", fmt.Errorf("insert delta holds no pivot reference")
}

func watchCmd() *cobra.Command {
	var natsURL, eventType string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print graph lifecycle events from NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := pktNats.NewSubscriber(natsURL)
			if err != nil {
				return err
			}
			defer sub.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			subject := pktNats.SubjectPrefix + ">"
			if eventType != "" {
				subject = pktNats.Subject(eventType)
			}

			err = sub.Subscribe(ctx, subject, "", func(_ context.Context, ev events.Event) error {
				color.New(color.FgMagenta, color.Bold).Printf("%s ", ev.Timestamp().Format("15:04:05.000"))
				color.New(color.FgCyan).Printf("%s ", ev.EventType())
				payload, _ := json.Marshal(ev.Payload())
				fmt.Println(string(payload))
				return nil
			})
			if err != nil {
				return err
			}

			color.Green("Watching %s (Ctrl-C to stop)", subject)
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&natsURL, "nats", "nats://localhost:4222", "NATS URL")
	cmd.Flags().StringVar(&eventType, "type", "", "only events of this type, e.g. "+events.PivotSearched)
	return cmd
}
