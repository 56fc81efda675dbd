package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	httpservice "github.com/ark-network/raffle/internal/interface/http"
	"github.com/urfave/cli/v2"
)

// flags
var (
	playerFlag = &cli.StringFlag{
		Name:     "player",
		Usage:    "identity of the player entering the raffle",
		Required: true,
	}
	amountFlag = &cli.Uint64Flag{
		Name:  "amount",
		Usage: "amount sent with the entry, defaults to the entrance fee",
	}
	indexFlag = &cli.IntFlag{
		Name:     "index",
		Usage:    "position of the player in the current round",
		Required: true,
	}
	requestIdFlag = &cli.StringFlag{
		Name:     "request-id",
		Usage:    "id of the pending randomness request",
		Required: true,
	}
	randomWordsFlag = &cli.StringSliceFlag{
		Name:     "word",
		Usage:    "random word as a decimal integer, can be repeated",
		Required: true,
	}
	proofFlag = &cli.StringFlag{
		Name:     "proof",
		Usage:    "hex encoded proof issued by the randomness provider",
		Required: true,
	}
	accountFlag = &cli.StringFlag{
		Name:     "account",
		Usage:    "payout account",
		Required: true,
	}
)

// commands
var (
	enterCmd = &cli.Command{
		Name:   "enter",
		Usage:  "Enter the current raffle round",
		Action: enterAction,
		Flags:  []cli.Flag{playerFlag, amountFlag},
	}
	infoCmd = &cli.Command{
		Name:   "info",
		Usage:  "Get the state of the raffle",
		Action: infoAction,
	}
	feeCmd = &cli.Command{
		Name:   "fee",
		Usage:  "Get the entrance fee",
		Action: feeAction,
	}
	playerCmd = &cli.Command{
		Name:   "player",
		Usage:  "Get a player of the current round by index",
		Action: playerAction,
		Flags:  []cli.Flag{indexFlag},
	}
	upkeepCmd = &cli.Command{
		Name:  "upkeep",
		Usage: "Check or trigger a draw",
		Subcommands: append(
			cli.Commands{},
			upkeepCheckCmd,
			upkeepPerformCmd,
		),
	}
	upkeepCheckCmd = &cli.Command{
		Name:   "check",
		Usage:  "Check whether a draw is due",
		Action: upkeepCheckAction,
	}
	upkeepPerformCmd = &cli.Command{
		Name:   "perform",
		Usage:  "Request randomness for a draw",
		Action: upkeepPerformAction,
	}
	fulfillCmd = &cli.Command{
		Name:   "fulfill",
		Usage:  "Deliver random words for the pending draw request",
		Action: fulfillAction,
		Flags:  []cli.Flag{requestIdFlag, randomWordsFlag, proofFlag},
	}
	drawsCmd = &cli.Command{
		Name:   "draws",
		Usage:  "List the completed draws",
		Action: drawsAction,
	}
	balanceCmd = &cli.Command{
		Name:   "balance",
		Usage:  "Get the payout balance of an account",
		Action: balanceAction,
		Flags:  []cli.Flag{accountFlag},
	}
)

func enterAction(ctx *cli.Context) error {
	baseURL := ctx.String("url")
	amount := ctx.Uint64("amount")
	if amount == 0 {
		fee, err := get[httpservice.EntranceFeeResponse](
			fmt.Sprintf("%s/v1/raffle/entrance-fee", baseURL),
		)
		if err != nil {
			return err
		}
		amount = fee.EntranceFee
	}

	url := fmt.Sprintf("%s/v1/raffle/enter", baseURL)
	body := httpservice.EnterRaffleRequest{
		Player: ctx.String("player"),
		Amount: amount,
	}
	if _, err := post[struct{}](url, body); err != nil {
		return err
	}

	fmt.Printf("%s entered the raffle with %d\n", body.Player, body.Amount)
	return nil
}

func infoAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/raffle", ctx.String("url"))
	info, err := get[httpservice.RaffleResponse](url)
	if err != nil {
		return err
	}
	return printJSON(info)
}

func feeAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/raffle/entrance-fee", ctx.String("url"))
	fee, err := get[httpservice.EntranceFeeResponse](url)
	if err != nil {
		return err
	}

	fmt.Println(fee.EntranceFee)
	return nil
}

func playerAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/raffle/players/%d", ctx.String("url"), ctx.Int("index"))
	player, err := get[httpservice.PlayerResponse](url)
	if err != nil {
		return err
	}

	fmt.Println(player.Player)
	return nil
}

func upkeepCheckAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/raffle/upkeep", ctx.String("url"))
	status, err := get[httpservice.UpkeepResponse](url)
	if err != nil {
		return err
	}
	return printJSON(status)
}

func upkeepPerformAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/raffle/upkeep", ctx.String("url"))
	resp, err := post[httpservice.PerformUpkeepResponse](url, nil)
	if err != nil {
		return err
	}

	fmt.Println(resp.RequestId)
	return nil
}

func fulfillAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/raffle/fulfill", ctx.String("url"))
	body := httpservice.FulfillRandomWordsRequest{
		RequestId:   ctx.String("request-id"),
		RandomWords: ctx.StringSlice("word"),
		Proof:       ctx.String("proof"),
	}
	if _, err := post[struct{}](url, body); err != nil {
		return err
	}

	fmt.Printf("request %s fulfilled\n", body.RequestId)
	return nil
}

func drawsAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/raffle/draws", ctx.String("url"))
	draws, err := get[httpservice.DrawsResponse](url)
	if err != nil {
		return err
	}
	return printJSON(draws.Draws)
}

func balanceAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/v1/balances/%s", ctx.String("url"), ctx.String("account"))
	balance, err := get[httpservice.BalanceResponse](url)
	if err != nil {
		return err
	}

	fmt.Println(balance.Balance)
	return nil
}

func post[T any](url string, body interface{}) (result T, err error) {
	var reader io.Reader = strings.NewReader("{}")
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return result, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest("POST", url, reader)
	if err != nil {
		return
	}
	req.Header.Add("Content-Type", "application/json")

	return do[T](req)
}

func get[T any](url string) (result T, err error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return
	}
	req.Header.Add("Content-Type", "application/json")

	return do[T](req)
}

func do[T any](req *http.Request) (result T, err error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	if resp.StatusCode >= http.StatusBadRequest {
		errResp := httpservice.ErrorResponse{}
		if jsonErr := json.Unmarshal(buf, &errResp); jsonErr != nil || errResp.Error == "" {
			err = fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(buf))
			return
		}
		err = fmt.Errorf("%s", errResp.Error)
		return
	}
	if resp.StatusCode == http.StatusNoContent || len(buf) == 0 {
		return
	}

	err = json.Unmarshal(buf, &result)
	return
}

func printJSON(resp interface{}) error {
	jsonBytes, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		return err
	}

	fmt.Println(string(jsonBytes))
	return nil
}
