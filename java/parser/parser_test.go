package parser

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/ncss/java/metrics"
)

func parse(t *testing.T, src string, opts ...Option) *metrics.Unit {
	t.Helper()
	opts = append([]Option{WithFile("Test.java")}, opts...)
	unit, err := Parse(context.Background(), []byte(src), opts...)
	require.NoError(t, err)
	require.False(t, unit.Partial)
	return unit
}

func function(t *testing.T, unit *metrics.Unit, name string) *metrics.FunctionMetric {
	t.Helper()
	for _, fn := range unit.Functions {
		if fn.Name == name {
			return fn
		}
	}
	var names []string
	for _, fn := range unit.Functions {
		names = append(names, fn.Name)
	}
	require.Failf(t, "function not found", "%s not in %v", name, names)
	return nil
}

func functionNames(unit *metrics.Unit) []string {
	var names []string
	for _, fn := range unit.Functions {
		names = append(names, fn.Name)
	}
	return names
}

func TestReturnLowersComplexity(t *testing.T) {
	unit := parse(t, `class Foo { void bar() { if (x) { return; } } }`)

	require.Len(t, unit.Functions, 1)
	bar := unit.Functions[0]
	assert.Equal(t, "Foo.bar()", bar.Name)
	assert.Equal(t, 1, bar.CCN)
	assert.Equal(t, 3, bar.NCSS)

	require.Len(t, unit.Classes, 1)
	assert.Equal(t, "Foo", unit.Classes[0].Name)
	assert.Equal(t, 4, unit.Classes[0].NCSS)
	assert.Equal(t, 1, unit.Classes[0].Functions)
	assert.Equal(t, 4, unit.NCSS)
}

func TestSwitchCaseComplexity(t *testing.T) {
	unit := parse(t, `class Foo { void bar(int a, int b) { switch(a) { case 1: break; case 2: break; default: break; } } }`)

	bar := function(t, unit, "Foo.bar(int,int)")
	assert.Equal(t, 3, bar.CCN)
	assert.Equal(t, "(int,int)", bar.Signature())
	assert.Equal(t, 8, bar.NCSS)
}

func TestUnterminatedClass(t *testing.T) {
	unit, err := Parse(context.Background(), []byte(`class Foo { void bar() {`), WithFile("Foo.java"))

	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.True(t, serr.Expects(TokenRBrace), "expected %v", serr.Expected)
	assert.Equal(t, TokenEOF, serr.Token.Kind)
	assert.Contains(t, err.Error(), "unexpected end of file")
	assert.Contains(t, err.Error(), `"}"`)

	assert.True(t, unit.Partial)
	assert.Empty(t, unit.Classes)
	assert.Empty(t, unit.Functions)
}

func TestPartialUnitKeepsCompletedDeclarations(t *testing.T) {
	unit, err := Parse(context.Background(), []byte(`
class A { void a() {} }
class B { void b( }
`))

	require.Error(t, err)
	assert.True(t, unit.Partial)
	require.Len(t, unit.Classes, 1)
	assert.Equal(t, "A", unit.Classes[0].Name)
	assert.Equal(t, []string{"A.a()"}, functionNames(unit))
	assert.Equal(t, 2, unit.NCSS)
}

func TestComplexityFloor(t *testing.T) {
	unit := parse(t, `
class Floor {
    void plain() { a(); b(); }
    int answer() { return 42; }
    int twice() { if (a) return 1; return 2; }
}
`)

	assert.Equal(t, 1, function(t, unit, "Floor.plain()").CCN)
	assert.Equal(t, 0, function(t, unit, "Floor.answer()").CCN)
	assert.Equal(t, 1, function(t, unit, "Floor.twice()").CCN)
}

func TestDecisionPoints(t *testing.T) {
	unit := parse(t, `
class D {
    int f(int a, boolean b) {
        for (int i = 0; i < a; i++) {
            while (b && a > 0 || !b) { a--; }
        }
        do { a++; } while (a < 10);
        for (String s : names) { use(s); }
        try {
            risky();
        } catch (IOException | RuntimeException e) {
            log(e);
        } catch (Exception e) {
        } finally {
            done();
        }
        return b ? a : -a;
    }
}
`)

	f := function(t, unit, "D.f(int,boolean)")
	// for, while, &&, ||, do, for, two catches, ?:, minus the return
	assert.Equal(t, 1+9-1, f.CCN)
}

func TestStatementCounting(t *testing.T) {
	unit := parse(t, `
class N {
    void f() {
        int a = 1, b = 2;
        if (a > b) {
            a = b;
        } else if (b > a) {
            b = a;
        } else {
            ;
        }
        label:
        for (;;) {
            break label;
        }
        {
            assert a == b : "same";
        }
        synchronized (this) {
            throw new IllegalStateException();
        }
    }
}
`)

	f := function(t, unit, "N.f()")
	// declaration, local variable, if, else, if, assignment, else, assignment,
	// labeled, for, break, assert, synchronized, throw
	assert.Equal(t, 14, f.NCSS)
	assert.Equal(t, 1+3, f.CCN)
}

func TestLocalClassFoldsIntoFunction(t *testing.T) {
	unit := parse(t, `
package demo;

public class Outer {
    void run() {
        class Local {
            void inner() {
                int x = 1;
            }
        }
        new Local().inner();
    }
}
`)

	require.Len(t, unit.Classes, 1)
	outer := unit.Classes[0]
	assert.Equal(t, "demo.Outer", outer.Name)
	assert.Equal(t, 6, outer.NCSS)
	assert.Equal(t, 2, outer.Functions)
	assert.Equal(t, 1, outer.Classes)

	assert.Equal(t, []string{"demo.Outer.Local.inner()", "demo.Outer.run()"}, functionNames(unit))

	run := function(t, unit, "demo.Outer.run()")
	assert.Equal(t, 3, run.NCSS)
	assert.Equal(t, 1, run.LocalClasses)
	assert.Equal(t, 1, run.LocalFunctions)

	inner := function(t, unit, "demo.Outer.Local.inner()")
	assert.Equal(t, 2, inner.NCSS)
	assert.Zero(t, inner.LocalClasses)

	pkg := unit.Packages["demo"]
	require.NotNil(t, pkg)
	assert.Equal(t, 7, pkg.NCSS)
	assert.Equal(t, 2, pkg.Classes)
	assert.Equal(t, 2, pkg.Functions)
	assert.Equal(t, 7, unit.NCSS)
}

func TestNestedClassNames(t *testing.T) {
	unit := parse(t, `
package a.b;

class Top {
    static class Middle {
        interface Bottom {
            void call(String s);
        }
        Middle() {}
    }
    enum Kind { ONE, TWO }
}
`)

	require.Len(t, unit.Classes, 1)
	top := unit.Classes[0]
	assert.Equal(t, "a.b.Top", top.Name)
	assert.Equal(t, 3, top.Classes)
	assert.Equal(t, 2, top.Functions)
	assert.Equal(t, []string{"a.b.Top.Middle.Bottom.call(String)", "a.b.Top.Middle.Middle()"}, functionNames(unit))
}

func TestAnonymousClassNames(t *testing.T) {
	unit := parse(t, `
class Anon {
    Runnable a = new Runnable() { public void run() {} };
    Runnable b = new Runnable() {
        public void run() {
            Object o = new Object() { public String toString() { return ""; } };
        }
    };
}
`)

	assert.Equal(t, []string{
		"Anon$1.run()",
		"Anon$2$1.toString()",
		"Anon$2.run()",
	}, functionNames(unit))

	run := function(t, unit, "Anon$2.run()")
	assert.Equal(t, 2, run.NCSS)
	assert.Equal(t, 1, run.LocalClasses)

	require.Len(t, unit.Classes, 1)
	assert.Equal(t, 3, unit.Classes[0].Classes)
	assert.Equal(t, 3, unit.Classes[0].Functions)
}

func TestEnumConstantBodies(t *testing.T) {
	unit := parse(t, `
enum Op {
    PLUS {
        int apply(int a, int b) { return a + b; }
    },
    MINUS("-"),
    ;

    Op() {}
    Op(String symbol) {}
    abstract int apply(int a, int b);
}
`)

	plus := function(t, unit, "Op$1.apply(int,int)")
	assert.Equal(t, 0, plus.CCN)
	assert.Equal(t, 2, plus.NCSS)

	abstract := function(t, unit, "Op.apply(int,int)")
	assert.Equal(t, 1, abstract.CCN)
	assert.Equal(t, 1, abstract.NCSS)

	function(t, unit, "Op.Op(String)")
	assert.Equal(t, 1, unit.Classes[0].Classes)
}

func TestSignatures(t *testing.T) {
	unit := parse(t, `
class Sig {
    void generic(Map<String, List<Integer>> m, String... rest) {}
    void arrays(int[] a, String b[], final @Deprecated Object o) {}
    void receiver(Sig this, int x) {}
    <T extends Comparable<? super T>> void bound(List<? extends T> xs) {}
    void qualified(java.util.Map.Entry<String, ?> e) {}
}
`)

	assert.Equal(t, []string{
		"Sig.generic(Map<String,List<Integer>>,String...)",
		"Sig.arrays(int[],String[],Object)",
		"Sig.receiver(int)",
		"Sig.bound(List<? extends T>)",
		"Sig.qualified(java.util.Map.Entry<String,?>)",
	}, functionNames(unit))
}

func TestRecords(t *testing.T) {
	unit := parse(t, `
public record Point(int x, int y) implements Shape {
    public Point {
        if (x < 0) throw new IllegalArgumentException();
    }
    Point(int v) { this(v, v); }
    static Point origin() { return new Point(0, 0); }
}
`)

	compact := function(t, unit, "Point.Point(int,int)")
	assert.Equal(t, 2, compact.CCN)
	assert.Equal(t, 3, compact.NCSS)

	delegating := function(t, unit, "Point.Point(int)")
	assert.Equal(t, 2, delegating.NCSS)

	function(t, unit, "Point.origin()")
}

func TestJavadocGating(t *testing.T) {
	src := `
public class Doc {
    /** Hidden. */
    private void hidden() {}

    /**
     * Shown.
     */
    public void shown() {}
}
`

	t.Run("public only", func(t *testing.T) {
		unit := parse(t, src)
		assert.Zero(t, function(t, unit, "Doc.hidden()").Javadocs)
		assert.Equal(t, 1, function(t, unit, "Doc.shown()").Javadocs)
		assert.Equal(t, 1, unit.Classes[0].Javadocs)
		assert.Equal(t, 3, unit.Classes[0].JavadocLines)
	})

	t.Run("private counted", func(t *testing.T) {
		unit := parse(t, src, WithPrivateJavadoc(true))
		assert.Equal(t, 1, function(t, unit, "Doc.hidden()").Javadocs)
		assert.Equal(t, 1, function(t, unit, "Doc.shown()").Javadocs)
		assert.Equal(t, 2, unit.Classes[0].Javadocs)
		assert.Equal(t, 4, unit.Classes[0].JavadocLines)
	})
}

func TestJavadocAttribution(t *testing.T) {
	unit := parse(t, `
/** Top. */
public class W {
    /** doc */
    /* plain */
    public void blocked() {}

    /** doc */
    // note
    public void skipsLineComment() {}

    /** doc */
    @Override
    public String toString() { return ""; }

    class Hidden {
        /** not visible, Hidden is not public */
        public void m() {}
    }

    public interface Api {
        /** implicitly public */
        void call();
    }
}
`)

	assert.Zero(t, function(t, unit, "W.blocked()").Javadocs)
	assert.Equal(t, 1, function(t, unit, "W.skipsLineComment()").Javadocs)
	assert.Equal(t, 1, function(t, unit, "W.toString()").Javadocs)
	assert.Zero(t, function(t, unit, "W.Hidden.m()").Javadocs)
	assert.Equal(t, 1, function(t, unit, "W.Api.call()").Javadocs)
	assert.Equal(t, 4, unit.Classes[0].Javadocs)
}

func TestCommentCounting(t *testing.T) {
	unit := parse(t, `
// header
package c;

class C {
    // one
    /* two
       lines */
    int x;
}
// trailer
`)

	require.Len(t, unit.Classes, 1)
	assert.Equal(t, 1, unit.Classes[0].SingleComments)
	assert.Equal(t, 2, unit.Classes[0].MultiComments)

	pkg := unit.Packages["c"]
	assert.Equal(t, 3, pkg.SingleComments)
	assert.Equal(t, 2, pkg.MultiComments)
}

func TestLambdaReturnDoesNotCount(t *testing.T) {
	unit := parse(t, `
class L {
    void g(Runnable r) { run(() -> { return; }); }
    int h(List<Integer> xs) {
        xs.forEach(x -> { if (x > 0) { return; } });
        return xs.size() > 0 && xs.isEmpty() ? 1 : 2;
    }
    Function<Integer, Integer> inc = x -> x + 1;
    BinaryOperator<Integer> add = (Integer a, Integer b) -> a + b;
}
`)

	g := function(t, unit, "L.g(Runnable)")
	assert.Equal(t, 1, g.CCN)
	assert.Equal(t, 3, g.NCSS)

	h := function(t, unit, "L.h(List<Integer>)")
	assert.Equal(t, 1+3-1, h.CCN)
}

func TestSwitchExpressions(t *testing.T) {
	unit := parse(t, `
class S {
    int f(Object o) {
        return switch (o) {
            case Integer i when i > 0 -> 1;
            case String s -> { yield 2; }
            case Point(int x, int y) -> x + y;
            case null, default -> 3;
        };
    }
    int yield(int yield) { yield = 3; return yield; }
}
`)

	f := function(t, unit, "S.f(Object)")
	// four case labels, one of them also matching default
	assert.Equal(t, 1+4-1, f.CCN)
	assert.Equal(t, 10, f.NCSS)

	y := function(t, unit, "S.yield(int)")
	assert.Equal(t, 3, y.NCSS)
}

func TestExpressions(t *testing.T) {
	parse(t, `
class E {
    Map<String, List<Integer>> m = new HashMap<>();
    int shift = a >> 2 >>> 1;
    Object cast = (Comparable<String>) (Object) "x";
    int neg = (int) -1 + (a) - 1;
    Supplier<List<String>> ctor = ArrayList<String>::new;
    IntFunction<int[]> arr = int[]::new;
    Class<?> k = String[].class;
    boolean test = o instanceof String s && !s.isEmpty();
    int[][] grid = new int[][] { {1, 2}, {3} };
    Object inner = outer.new Inner();
    List<String> typed = Collections.<String>emptyList();
    String text = """
        hello
        """;
    char c = '\'';
    Runnable r = () -> {};

    void calls() {
        super.toString();
        E.super.hashCode();
        a[i] = b[j]++;
        x += y -= 2;
        foo(a < b, c > d);
    }
}
`)
}

func TestModernDeclarations(t *testing.T) {
	unit := parse(t, `
package shapes;

import java.util.*;
import static java.lang.Math.max;

public sealed interface Shape permits Circle, Square {
    double area();
}

final class Circle implements Shape {
    public double area() { return 0; }
}

non-sealed class Square implements Shape {
    public double area() { return 1; }
}

@interface Marker {
    String value() default "";
    int[] ids() default {1, 2};
}
`)

	require.Len(t, unit.Imports, 2)
	assert.Equal(t, metrics.Import{Name: "java.util", Wildcard: true, BeginLine: 4, BeginColumn: 1, EndLine: 4, EndColumn: 20}, unit.Imports[0])
	assert.Equal(t, "java.lang.Math.max", unit.Imports[1].Name)
	assert.True(t, unit.Imports[1].Static)

	var names []string
	for _, c := range unit.Classes {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"shapes.Shape", "shapes.Circle", "shapes.Square", "shapes.Marker"}, names)
	assert.Equal(t, 4, unit.Packages["shapes"].Classes)
}

func TestModuleInfo(t *testing.T) {
	unit, err := Parse(context.Background(), []byte(`
open module com.example {
    requires transitive java.base;
    requires static lombok;
    exports com.example.api to a.b, c.d;
    uses com.example.spi.Plugin;
    provides com.example.spi.Plugin with com.example.impl.Default;
}
`), WithFile("src/module-info.java"))

	require.NoError(t, err)
	assert.Empty(t, unit.Classes)
}

func TestDeterminism(t *testing.T) {
	src := []byte(`
package d;
public class R {
    /** doc */
    public int f(int a) { return a > 0 ? a : -a; }
    Runnable r = new Runnable() { public void run() {} };
}
`)

	first, err := Parse(context.Background(), src)
	require.NoError(t, err)
	second, err := Parse(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	p := New()
	tokens, err := Tokenize(src, "")
	require.NoError(t, err)
	third, err := p.ParseTokens(context.Background(), tokens)
	require.NoError(t, err)
	fourth, err := p.ParseTokens(context.Background(), tokens)
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.Equal(t, third, fourth)
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	unit, err := Parse(ctx, []byte(`class A {} class B {}`), WithFile("A.java"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, unit.Partial)
	assert.Empty(t, unit.Classes)
}

func TestExpectedTokensAtDecision(t *testing.T) {
	_, err := Parse(context.Background(), []byte(`class X { + }`))

	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.True(t, serr.Expects(TokenSemicolon), "expected %v", serr.Expected)
	assert.True(t, serr.Expects(TokenIdent), "expected %v", serr.Expected)
	assert.True(t, serr.Expects(TokenClass), "expected %v", serr.Expected)
	assert.True(t, serr.Expects(TokenPublic), "expected %v", serr.Expected)
	assert.Equal(t, 1, serr.Pos.Line)
	assert.Equal(t, 11, serr.Pos.Column)
}

func TestExpectedTokensInExpression(t *testing.T) {
	_, err := Parse(context.Background(), []byte(`class X { void m() { x = ; } }`))

	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.True(t, serr.Expects(TokenIntLiteral), "expected %v", serr.Expected)
	assert.True(t, serr.Expects(TokenIdent), "expected %v", serr.Expected)
	assert.False(t, serr.Expects(TokenIf), "expected %v", serr.Expected)
}

func TestInvalidToken(t *testing.T) {
	unit, err := Parse(context.Background(), []byte("class X { int a = #; }"))

	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "invalid token", serr.Message)
	assert.Equal(t, TokenError, serr.Token.Kind)
	assert.True(t, unit.Partial)
}

func TestLexicalErrorAfterLastDeclaration(t *testing.T) {
	unit, err := Parse(context.Background(), []byte("class X {}\n/* never closed"))

	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "invalid token", serr.Message)
	assert.Equal(t, 2, serr.Pos.Line)
	assert.Equal(t, 1, serr.Pos.Column)
	assert.True(t, unit.Partial)
}

func TestAnnotatedArrayDimensions(t *testing.T) {
	unit := parse(t, `
class A {
    String @NonNull [] names;
    int @A [] @B(1) [] grid() { return null; }
    void f(byte @Size(max = 4) [] b) {
        String @NonNull [] a;
        int[] @X [] c = new int[2][];
    }
    void g(java.util.@Ann("(") List<@a.b.C String> xs) {}
}
`)

	assert.Equal(t, []string{"A.grid()", "A.f(byte[])", "A.g(java.util.List<String>)"}, functionNames(unit))
	assert.Equal(t, 3, function(t, unit, "A.f(byte[])").NCSS)
}

type recordingLogger struct {
	commonlog.Logger
	lines []string
}

func (l *recordingLogger) Debugf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestWithLogger(t *testing.T) {
	log := &recordingLogger{}
	parse(t, `class A { void f() {} }`, WithLogger(log))

	require.NotEmpty(t, log.lines)
	assert.Contains(t, log.lines[len(log.lines)-1], "Test.java: 1 classes, 1 functions")
}

func TestTrialHasNoSideEffects(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		match bool
	}{
		{"complete class", `class X { /** d */ public void m() { if (a) { return; } } Runnable r = new Runnable() { public void run() {} }; }`, true},
		{"fails deep inside", `class X { void m() { int a = 1; + } }`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize([]byte(tt.src), "X.java")
			require.NoError(t, err)

			p := New()
			p.reset(tokens)
			before := p.st

			ok := p.speculate(decTypeDecl, unbounded, p.typeDeclaration)

			assert.Equal(t, tt.match, ok)
			assert.Equal(t, counters{}, p.n)
			assert.Equal(t, before, p.st)
			assert.Zero(t, p.cur.pos)
			assert.Zero(t, p.cur.gen)
			assert.Zero(t, p.cur.trial)
			assert.Empty(t, p.pending)
			assert.Empty(t, p.unit.Classes)
			assert.Empty(t, p.unit.Packages)
		})
	}
}

func TestTrialBudget(t *testing.T) {
	tokens, err := Tokenize([]byte("a b c"), "")
	require.NoError(t, err)

	p := New()
	p.reset(tokens)
	rule := func() {
		p.ident()
		p.expect(TokenArrow)
	}

	assert.True(t, p.speculate(decLambda, 1, rule), "budget used up before the mismatch")
	assert.False(t, p.speculate(decLambda, 2, rule))
	assert.False(t, p.speculate(decLambda, unbounded, rule))
	assert.Zero(t, p.cur.pos)
}

func TestShiftSplitIsRewound(t *testing.T) {
	tokens, err := Tokenize([]byte("List<List<String>> x"), "")
	require.NoError(t, err)

	p := New()
	p.reset(tokens)

	require.True(t, p.speculate(decTypeReference, unbounded, func() {
		p.typ()
		p.ident()
	}))
	assert.Zero(t, p.cur.split)
	assert.Equal(t, TokenShr, p.cur.tokens[5].Kind, "token array is never rewritten")

	m := p.cur.mark()
	p.typ()
	assert.Equal(t, "List<List<String>>", p.textSince(m))
	assert.Equal(t, "x", p.ident().Literal)
}
