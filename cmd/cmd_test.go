package cmd

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type session struct {
	t   *testing.T
	cfg string
	dir string
}

func newSession(t *testing.T) *session {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws/20000000/json/" {
			http.Error(w, "bad gateway", http.StatusBadGateway)
			return
		}
		if r.URL.Path != "/ws/21540500/json/" {
			w.Write([]byte(`{"erro": true}`))
			return
		}
		w.Write([]byte(`{"cep": "21540-500", "logradouro": "Estrada do Barro Vermelho",
			"bairro": "Rocha Miranda", "localidade": "Rio de Janeiro", "uf": "RJ"}`))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	data := "store_file: " + filepath.Join(dir, "dados", "recibos.xlsx") + "\n" +
		"output_dir: " + filepath.Join(dir, "out") + "\n" +
		"draft_file: " + filepath.Join(dir, "dados", "rascunho.yaml") + "\n" +
		"log_level: error\n" +
		"open_documents: false\n" +
		"postal_lookup:\n  base_url: " + srv.URL + "/ws\n"
	if err := os.WriteFile(cfg, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { assumeYes = false })
	return &session{t: t, cfg: cfg, dir: dir}
}

// run executes one command line and returns its output and messages.
func (s *session) run(stdin string, args ...string) (string, string, error) {
	var out, msgs bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&msgs)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", s.cfg, "--no-color"}, args...))
	err := rootCmd.Execute()
	return out.String(), msgs.String(), err
}

func (s *session) mustRun(args ...string) (string, string) {
	s.t.Helper()
	out, msgs, err := s.run("", args...)
	if err != nil {
		s.t.Fatalf("%v failed: %v\n%s", args, err, msgs)
	}
	return out, msgs
}

func expectContains(t *testing.T, what, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("%s = %q, want it to contain %q", what, got, want)
	}
}

func TestReceiptWorkflow(t *testing.T) {
	s := newSession(t)

	_, msgs := s.mustRun("draft", "new")
	expectContains(t, "draft new", msgs, "Informação: novo recibo 000001")

	out, _ := s.mustRun("draft", "set", "client.name=Maria Souza", "client.phone=21997570103", "status=finalizado")
	expectContains(t, "draft set", out, "client.phone = (21) 99757-0103")
	expectContains(t, "draft set", out, "status = Finalizado")

	_, msgs = s.mustRun("cep", "21540500")
	expectContains(t, "cep", msgs, "Estrada do Barro Vermelho, Rocha Miranda, Rio de Janeiro - RJ")

	_, msgs = s.mustRun("item", "add", "--category", "peça", "--code", "F-01", "--description", "Filtro de óleo", "--price", "25,90", "--qty", "2")
	expectContains(t, "item add", msgs, "total R$ 51,80")

	out, _ = s.mustRun("draft", "show")
	expectContains(t, "draft show", out, "client.city")
	expectContains(t, "draft show", out, "Rio de Janeiro")
	expectContains(t, "draft show", out, "Filtro de óleo")

	_, msgs = s.mustRun("save")
	expectContains(t, "save", msgs, "recibo 000001 salvo")

	out, _ = s.mustRun("list")
	expectContains(t, "list", out, "Maria Souza")
	expectContains(t, "list", out, "51,80")

	out, _ = s.mustRun("nextid")
	if strings.TrimSpace(out) != "000002" {
		t.Errorf("nextid = %q, want 000002", out)
	}

	_, msgs, err := s.run("", "open", "99")
	var reported reportedError
	if !errors.As(err, &reported) {
		t.Errorf("open 99 error = %v, want a reported error", err)
	}
	expectContains(t, "open 99", msgs, "Aviso: receipt 000099 not found")

	_, msgs = s.mustRun("open", "1")
	expectContains(t, "open 1", msgs, "recibo 000001 de Maria Souza carregado")

	_, msgs = s.mustRun("pdf")
	expectContains(t, "pdf", msgs, "PDF gerado: ")
	docs, _ := filepath.Glob(filepath.Join(s.dir, "out", "recibo_000001_*.pdf"))
	if len(docs) != 1 {
		t.Errorf("found documents %v, want one", docs)
	}

	_, msgs, err = s.run("n\n", "delete", "1")
	if err != nil {
		t.Fatalf("cancelled delete failed: %v", err)
	}
	expectContains(t, "delete", msgs, "exclusão cancelada")
	out, _ = s.mustRun("list")
	expectContains(t, "list after cancel", out, "Maria Souza")

	_, msgs = s.mustRun("delete", "1", "--yes")
	expectContains(t, "delete --yes", msgs, "recibo 000001 excluído")
	out, _ = s.mustRun("list")
	expectContains(t, "list after delete", out, "Nenhum recibo salvo.")
}

func TestItemAddValidation(t *testing.T) {
	s := newSession(t)
	s.mustRun("draft", "new")

	_, msgs, err := s.run("", "item", "add", "--category", "peça", "--code=", "--description", "x", "--price", "abc", "--qty", "1")
	if err == nil {
		t.Fatal("item add with bad input succeeded")
	}
	expectContains(t, "item add", msgs, "Aviso: invalid item")
	expectContains(t, "item add", msgs, "code: is required")
	expectContains(t, "item add", msgs, "unit_price: must be a number")
}

func TestFormatCommand(t *testing.T) {
	s := newSession(t)
	tests := map[string][]string{
		"(21) 99757-0103":    {"phone", "21997570103"},
		"123.456.789-01":     {"taxid", "12345678901"},
		"12.345.678/0001-90": {"taxid", "12345678000190"},
		"1.234,50":           {"currency", "1234.5"},
		"0,00":               {"currency", "abc"},
		"21540-500":          {"cep", "21540500"},
	}
	for want, args := range tests {
		out, _ := s.mustRun(append([]string{"format"}, args...)...)
		if strings.TrimSpace(out) != want {
			t.Errorf("format %v = %q, want %q", args, out, want)
		}
	}

	if _, _, err := s.run("", "format", "shoe", "42"); err == nil {
		t.Error("format with an unknown kind succeeded")
	}
}

func TestCepKeepsCodeWhenServiceFails(t *testing.T) {
	s := newSession(t)
	s.mustRun("draft", "new")
	s.mustRun("draft", "set", "client.name=Maria Souza", "client.city=Niterói")

	_, msgs, err := s.run("", "cep", "20000000")
	if err == nil {
		t.Fatal("cep with a failing service succeeded")
	}
	expectContains(t, "cep", msgs, "Aviso: ")

	out, _ := s.mustRun("draft", "show")
	expectContains(t, "draft show", out, "20000-000")
	expectContains(t, "draft show", out, "Niterói")

	_, _, err = s.run("", "cep", "99999999")
	if err == nil {
		t.Fatal("cep with an unknown code succeeded")
	}
	out, _ = s.mustRun("draft", "show")
	expectContains(t, "draft show", out, "99999-999")
	if strings.Contains(out, "Niterói") {
		t.Errorf("draft show = %q, want the city cleared after an unknown code", out)
	}
}
