package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Pranay13257/minibacarat/internal/game"
	"github.com/Pranay13257/minibacarat/internal/game/cards"
	"github.com/Pranay13257/minibacarat/internal/game/rules"
	"github.com/Pranay13257/minibacarat/internal/server"
	"github.com/pterm/pterm"
)

func disableStyling() {
	pterm.DisableStyling()
}

func handText(hand []cards.Card) string {
	if len(hand) == 0 {
		return "-"
	}
	return strings.Join(cards.Strings(hand), " ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// renderState draws both hands side by side over a status table.
func renderState(s game.GameState) (string, error) {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	player := pbox.WithTitle(pterm.LightBlue("|PLAYER|")).WithTitleTopCenter().
		Sprintf("%s\nTotal: %d\nPair: %s", handText(s.PlayerCards), s.PlayerTotal, yesNo(s.PlayerPair))
	banker := pbox.WithTitle(pterm.LightRed("|BANKER|")).WithTitleTopCenter().
		Sprintf("%s\nTotal: %d\nPair: %s", handText(s.BankerCards), s.BankerTotal, yesNo(s.BankerPair))

	hands, err := pterm.DefaultPanel.WithPanels(pterm.Panels{
		{{Data: player}, {Data: banker}},
	}).Srender()
	if err != nil {
		return "", err
	}

	outcome := "-"
	if s.GamePhase == game.PhaseFinished {
		outcome = s.Winner.String()
		if s.NaturalType != rules.NaturalNone {
			outcome += " (" + s.NaturalType.String() + ")"
		}
		if s.IsSuperSix {
			outcome += " super six"
		}
	}

	players := make([]string, len(s.ActivePlayers))
	for i, p := range s.ActivePlayers {
		players[i] = string(p)
	}

	status, err := pterm.DefaultTable.WithData(pterm.TableData{
		{"Table", s.TableNumber, "Mode", s.GameMode.String()},
		{"Round", strconv.Itoa(s.Round), "Phase", s.GamePhase.String()},
		{"Next card", s.NextCardGoesTo.String(), "Outcome", outcome},
		{"Shoe", fmt.Sprintf("%d left / %d used", s.RemainingCards, s.UsedCards), "Burn", s.BurnMode.String()},
		{"Players", strings.Join(players, ","), "Auto-deal", s.AutoDealState.String()},
		{"Wins P/B/T", fmt.Sprintf("%d/%d/%d", s.PlayerWins, s.BankerWins, s.Ties), "Bets", fmt.Sprintf("%d - %d", s.MinBet, s.MaxBet)},
	}).Srender()
	if err != nil {
		return "", err
	}

	return hands + "\n" + status + "\n", nil
}

func renderStats(st game.Stats) (string, error) {
	return pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Rounds", "Player", "Banker", "Tie", "P pair", "B pair", "P natural", "B natural", "Super six"},
		{
			strconv.Itoa(st.Rounds),
			strconv.Itoa(st.PlayerWins),
			strconv.Itoa(st.BankerWins),
			strconv.Itoa(st.Ties),
			strconv.Itoa(st.PlayerPairs),
			strconv.Itoa(st.BankerPairs),
			strconv.Itoa(st.PlayerNaturals),
			strconv.Itoa(st.BankerNaturals),
			strconv.Itoa(st.SuperSixes),
		},
	}).Srender()
}

func renderHistory(rounds []server.RoundView) (string, error) {
	if len(rounds) == 0 {
		return "no rounds recorded\n", nil
	}
	data := pterm.TableData{{"Round", "Winner", "Player", "Banker", "Score", "Flags", "Recorded"}}
	for _, r := range rounds {
		var flags []string
		if r.NaturalType != "" {
			flags = append(flags, r.NaturalType)
		}
		if r.PlayerPair {
			flags = append(flags, "player_pair")
		}
		if r.BankerPair {
			flags = append(flags, "banker_pair")
		}
		if r.IsSuperSix {
			flags = append(flags, "super_six")
		}
		if r.Manual {
			flags = append(flags, "manual")
		}
		if r.AutoDealt {
			flags = append(flags, "auto")
		}
		data = append(data, []string{
			strconv.Itoa(r.Round),
			r.Winner,
			strings.Join(r.PlayerCards, " "),
			strings.Join(r.BankerCards, " "),
			fmt.Sprintf("%d-%d", r.PlayerScore, r.BankerScore),
			strings.Join(flags, ","),
			r.RecordedAt,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}
