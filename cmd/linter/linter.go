package main

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/singlechecker"
)

const (
	zapPkg        = "go.uber.org/zap"
	prometheusPkg = "github.com/prometheus/client_golang/prometheus"
)

var Analyzer = &analysis.Analyzer{
	Name: "exitcheck",
	Doc:  "проверяет использование panic, os.Exit, log.Fatal, zap Fatal/Panic и prometheus MustRegister вне main пакета main",
	Run:  run,
}

func main() {
	singlechecker.Main(Analyzer)
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			if ident, ok := call.Fun.(*ast.Ident); ok {
				if ident.Name == "panic" {
					if _, builtin := pass.TypesInfo.Uses[ident].(*types.Builtin); builtin {
						pass.Reportf(call.Pos(), "использование встроенной функции panic")
					}
				}
				return true
			}

			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}

			fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
			if !ok || fn.Pkg() == nil {
				return true
			}

			if isTerminating(fn.Pkg().Path(), fn.Name()) && !isInMainFunc(pass, call) {
				pass.Reportf(call.Pos(),
					"вызов %s.%s вне функции main пакета main",
					fn.Pkg().Name(), fn.Name())
			}

			return true
		})
	}

	return nil, nil
}

// isTerminating сообщает, завершает ли функция процесс или паникует.
func isTerminating(pkgPath, name string) bool {
	switch pkgPath {
	case "log":
		return isFatalFunc(name)
	case "os":
		return name == "Exit"
	case zapPkg:
		return strings.HasPrefix(name, "Fatal") || strings.HasPrefix(name, "Panic") || strings.HasPrefix(name, "DPanic")
	case prometheusPkg:
		return name == "MustRegister"
	}
	return false
}

func isFatalFunc(name string) bool {
	return name == "Fatal" || name == "Fatalf" || name == "Fatalln"
}

// isInMainFunc проверяет, находится ли вызов внутри функции main пакета main
func isInMainFunc(pass *analysis.Pass, call *ast.CallExpr) bool {
	if pass.Pkg.Name() != "main" {
		return false
	}

	for _, file := range pass.Files {
		for _, decl := range file.Decls {
			funcDecl, ok := decl.(*ast.FuncDecl)
			if !ok || funcDecl.Recv != nil || funcDecl.Name.Name != "main" {
				continue
			}
			if funcDecl.Pos() <= call.Pos() && call.End() <= funcDecl.End() {
				return true
			}
		}
	}

	return false
}
