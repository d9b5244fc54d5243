package telegram

import (
	"context"
	"testing"
)

func TestBuildInlineKeyboardKeepsRowsAndCallbackData(t *testing.T) {
	markup := BuildInlineKeyboard([][]InlineButton{
		{{Text: "Next", Data: "rpc:next:1"}, {Text: "Cancel", Data: "rpc:cancel:1"}},
	})

	if len(markup.InlineKeyboard) != 1 || len(markup.InlineKeyboard[0]) != 2 {
		t.Fatalf("unexpected layout: %+v", markup.InlineKeyboard)
	}
	data := markup.InlineKeyboard[0][1].CallbackData
	if data == nil || *data != "rpc:cancel:1" {
		t.Fatalf("unexpected callback data: %v", data)
	}
}

func TestColumnButtonsPutsOneButtonPerRow(t *testing.T) {
	rows := ColumnButtons([]InlineButton{{Text: "a", Data: "1"}, {Text: "b", Data: "2"}, {Text: "c", Data: "3"}})
	if len(rows) != 3 {
		t.Fatalf("unexpected rows: %d", len(rows))
	}
	for _, row := range rows {
		if len(row) != 1 {
			t.Fatalf("expected single-button rows, got %d", len(row))
		}
	}
}

func TestDryRunClientSwallowsCalls(t *testing.T) {
	client, err := NewClient("", 0, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if !client.DryRun() {
		t.Fatalf("expected dry run without token")
	}
	if _, err := client.Administrators(context.Background(), -100); err != nil {
		t.Fatalf("administrators in dry run: %v", err)
	}
}
